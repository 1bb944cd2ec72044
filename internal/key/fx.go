package key

import (
	"github.com/smallbiznis/keyforge/internal/config"
	"github.com/smallbiznis/keyforge/internal/key/domain"
	"github.com/smallbiznis/keyforge/internal/key/filestore"
	"github.com/smallbiznis/keyforge/internal/key/repository"
	"github.com/smallbiznis/keyforge/internal/key/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the key service against the relational store.
var Module = fx.Module("key.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

// FileModule wires the key service against the flat-file store instead.
var FileModule = fx.Module("key.file",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.Repository {
		return filestore.New(cfg.KeysFile, log)
	}),
	fx.Provide(service.New),
)
