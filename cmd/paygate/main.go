package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/opencampus/paygate/internal/clock"
	"github.com/opencampus/paygate/internal/config"
	"github.com/opencampus/paygate/internal/logger"
	"github.com/opencampus/paygate/internal/migration"
	"github.com/opencampus/paygate/internal/server"
	"github.com/opencampus/paygate/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
