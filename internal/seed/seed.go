package seed

import (
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultKeyTypes is the built-in catalog. The flat-file store serves it
// directly; the relational store seeds it once and owns it afterwards.
func DefaultKeyTypes() []domain.KeyTypeDefinition {
	return []domain.KeyTypeDefinition{
		{ID: 1, Name: "Week", DurationDays: 7, Price: 10, Description: "7 days of access", IsActive: true},
		{ID: 2, Name: "Month", DurationDays: 30, Price: 30, Description: "30 days of access", IsActive: true},
		{ID: 3, Name: "Quarter", DurationDays: 90, Price: 75, Description: "90 days of access", IsActive: true},
		{ID: 4, Name: "Lifetime", DurationDays: 3650, Price: 200, Description: "Long-term access", IsActive: true},
	}
}

// EnsureKeyTypes inserts any missing catalog entries. Existing rows are left
// untouched so operators can reprice without the seed clobbering them.
func EnsureKeyTypes(conn *gorm.DB, log *zap.Logger) error {
	for _, kt := range DefaultKeyTypes() {
		err := conn.
			Where(domain.KeyTypeDefinition{Name: kt.Name}).
			Attrs(kt).
			FirstOrCreate(&domain.KeyTypeDefinition{}).Error
		if err != nil {
			return err
		}
	}
	log.Info("key type catalog seeded")
	return nil
}
