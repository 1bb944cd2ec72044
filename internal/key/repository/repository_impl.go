package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"gorm.io/gorm"
)

type keyRepository struct {
	db *gorm.DB
}

// Provide builds the relational store.
func Provide(db *gorm.DB) domain.Repository {
	return &keyRepository{db: db}
}

// Insert writes the key and its sale entry in one transaction, so a failed
// sale write never leaves an orphaned key behind.
func (r *keyRepository) Insert(ctx context.Context, key *domain.LicenseKey, sale *domain.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(key).Error; err != nil {
			return err
		}
		if sale != nil {
			if err := tx.Create(sale).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *keyRepository) FindByValue(ctx context.Context, keyValue string) (*domain.LicenseKey, error) {
	var key domain.LicenseKey
	err := r.db.WithContext(ctx).
		Where("key_value = ?", keyValue).
		First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *keyRepository) FindUsable(ctx context.Context, keyValue, machineID string, now time.Time) (*domain.LicenseKey, error) {
	var key domain.LicenseKey
	err := r.db.WithContext(ctx).
		Where("key_value = ? AND machine_id = ? AND is_active = ? AND expiry_date > ?", keyValue, machineID, true, now).
		First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *keyRepository) ListByCustomer(ctx context.Context, telegram string) ([]domain.LicenseKey, error) {
	keys := make([]domain.LicenseKey, 0)
	err := r.db.WithContext(ctx).
		Where("customer_telegram = ?", telegram).
		Order("created_date DESC").
		Find(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Deactivate flips the key inactive. Existence is the caller's concern (the
// service resolves the key first), so an update matching nothing is not an
// error here; mapping zero affected rows to not-found would also misreport
// an already-inactive key on drivers that count changed rows.
func (r *keyRepository) Deactivate(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&domain.LicenseKey{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *keyRepository) Stats(ctx context.Context, now time.Time) (domain.Stats, error) {
	var stats domain.Stats
	tx := r.db.WithContext(ctx)

	if err := tx.Model(&domain.LicenseKey{}).Count(&stats.TotalKeys).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := tx.Model(&domain.LicenseKey{}).
		Where("is_active = ? AND expiry_date > ?", true, now).
		Count(&stats.ActiveKeys).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := tx.Model(&domain.LicenseKey{}).
		Where("expiry_date <= ?", now).
		Count(&stats.ExpiredKeys).Error; err != nil {
		return domain.Stats{}, err
	}
	if err := tx.Model(&domain.LicenseKey{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return domain.Stats{}, err
	}

	typeStats := make([]domain.KeyTypeStat, 0)
	if err := tx.Model(&domain.LicenseKey{}).
		Select("key_type AS key_type, COUNT(*) AS count, COALESCE(SUM(price), 0) AS revenue").
		Group("key_type").
		Order("key_type ASC").
		Scan(&typeStats).Error; err != nil {
		return domain.Stats{}, err
	}
	stats.KeyTypeStats = typeStats

	return stats, nil
}

func (r *keyRepository) ListTypes(ctx context.Context) ([]domain.KeyTypeDefinition, error) {
	types := make([]domain.KeyTypeDefinition, 0)
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("duration_days ASC").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}
