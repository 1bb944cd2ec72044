package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keyforge/internal/clock"
	"github.com/smallbiznis/keyforge/internal/config"
	"github.com/smallbiznis/keyforge/internal/key"
	"github.com/smallbiznis/keyforge/internal/observability"
	"github.com/smallbiznis/keyforge/internal/scheduler"
	"github.com/smallbiznis/keyforge/internal/server"
	"go.uber.org/fx"
)

// keyforge-lite keeps the registry in a single JSON file. No database, no
// migrations; meant for single-operator deployments.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		key.FileModule,
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
