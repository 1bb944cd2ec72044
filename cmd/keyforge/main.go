package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keyforge/internal/clock"
	"github.com/smallbiznis/keyforge/internal/config"
	"github.com/smallbiznis/keyforge/internal/key"
	"github.com/smallbiznis/keyforge/internal/migration"
	"github.com/smallbiznis/keyforge/internal/observability"
	"github.com/smallbiznis/keyforge/internal/scheduler"
	"github.com/smallbiznis/keyforge/internal/server"
	"github.com/smallbiznis/keyforge/pkg/db"
	"go.uber.org/fx"
)

// keyforge is the durable variant: relational storage with schema migration
// and a seeded key type catalog.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		migration.Module,
		key.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
