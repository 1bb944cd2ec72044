package migration

import (
	"github.com/smallbiznis/keyforge/internal/config"
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"github.com/smallbiznis/keyforge/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module migrates the schema on startup and seeds the key type catalog.
// The embedded SQL is written for postgres; the mysql and sqlite backends
// migrate through gorm instead.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.Backend == config.BackendPostgres {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&domain.LicenseKey{},
				&domain.KeyTypeDefinition{},
				&domain.Sale{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureKeyTypes(conn, log)
	}),
)
