package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keyforge/internal/clock"
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type keyService struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &keyService{
		log:   p.Log.Named("key.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create issues a key and records its sale as completed. A past expiry is
// accepted; such a key simply never validates.
func (s *keyService) Create(ctx context.Context, req domain.CreateKeyRequest) (domain.LicenseKey, error) {
	now := s.clock.Now()

	if strings.TrimSpace(req.KeyValue) == "" {
		return domain.LicenseKey{}, domain.ErrInvalidKeyValue
	}
	if strings.TrimSpace(req.MachineID) == "" {
		return domain.LicenseKey{}, domain.ErrInvalidMachineID
	}
	if strings.TrimSpace(req.CustomerTelegram) == "" {
		return domain.LicenseKey{}, domain.ErrInvalidCustomer
	}
	if req.ExpiryDate.IsZero() {
		return domain.LicenseKey{}, domain.ErrInvalidExpiry
	}
	if req.Price < 0 {
		return domain.LicenseKey{}, domain.ErrInvalidPrice
	}

	key := domain.LicenseKey{
		ID:               s.genID.Generate(),
		KeyValue:         req.KeyValue,
		MachineID:        req.MachineID,
		CreatedDate:      now,
		ExpiryDate:       req.ExpiryDate,
		IsActive:         true,
		KeyType:          req.KeyType,
		CustomerTelegram: req.CustomerTelegram,
		Price:            req.Price,
	}
	sale := domain.Sale{
		ID:               s.genID.Generate(),
		KeyID:            key.ID,
		SaleDate:         now,
		Amount:           req.Price,
		CustomerTelegram: req.CustomerTelegram,
		Status:           domain.SaleStatusCompleted,
	}

	if err := s.repo.Insert(ctx, &key, &sale); err != nil {
		s.log.Error("failed to insert key", zap.Error(err))
		return domain.LicenseKey{}, err
	}

	s.log.Info("key created",
		zap.String("key_type", key.KeyType),
		zap.String("customer", key.CustomerTelegram),
		zap.Time("expiry", key.ExpiryDate),
	)
	return key, nil
}

// Validate reports whether the key licenses the given machine right now.
// Any non-matching pair is a negative answer, never an error; only a storage
// fault surfaces as one.
func (s *keyService) Validate(ctx context.Context, req domain.ValidateKeyRequest) (bool, error) {
	key, err := s.repo.FindUsable(ctx, req.KeyValue, req.MachineID, s.clock.Now())
	if err != nil {
		return false, err
	}
	return key != nil, nil
}

func (s *keyService) GetByValue(ctx context.Context, keyValue string) (domain.LicenseKey, error) {
	if strings.TrimSpace(keyValue) == "" {
		return domain.LicenseKey{}, domain.ErrInvalidKeyValue
	}

	key, err := s.repo.FindByValue(ctx, keyValue)
	if err != nil {
		return domain.LicenseKey{}, err
	}
	if key == nil {
		return domain.LicenseKey{}, domain.ErrNotFound
	}
	return *key, nil
}

// Deactivate flips the key inactive. Already-inactive keys deactivate again
// without complaint.
func (s *keyService) Deactivate(ctx context.Context, keyValue string) (domain.LicenseKey, error) {
	if strings.TrimSpace(keyValue) == "" {
		return domain.LicenseKey{}, domain.ErrInvalidKeyValue
	}

	key, err := s.repo.FindByValue(ctx, keyValue)
	if err != nil {
		return domain.LicenseKey{}, err
	}
	if key == nil {
		return domain.LicenseKey{}, domain.ErrNotFound
	}

	if err := s.repo.Deactivate(ctx, key.ID); err != nil {
		return domain.LicenseKey{}, err
	}
	key.IsActive = false

	s.log.Info("key deactivated", zap.String("customer", key.CustomerTelegram))
	return *key, nil
}

func (s *keyService) ListByCustomer(ctx context.Context, telegram string) ([]domain.LicenseKey, error) {
	if strings.TrimSpace(telegram) == "" {
		return nil, domain.ErrInvalidCustomer
	}
	return s.repo.ListByCustomer(ctx, telegram)
}

func (s *keyService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx, s.clock.Now())
}

func (s *keyService) ListTypes(ctx context.Context) ([]domain.KeyTypeDefinition, error) {
	return s.repo.ListTypes(ctx)
}
