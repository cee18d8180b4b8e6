package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/zoolspeed/internal/cache"
	"github.com/smallbiznis/zoolspeed/internal/clock"
	"github.com/smallbiznis/zoolspeed/internal/config"
	"github.com/smallbiznis/zoolspeed/internal/lock"
	"github.com/smallbiznis/zoolspeed/internal/migration"
	"github.com/smallbiznis/zoolspeed/internal/observability"
	"github.com/smallbiznis/zoolspeed/internal/server"
	"github.com/smallbiznis/zoolspeed/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			app := fx.New(
				// Core Infrastructure
				config.Module,
				observability.Module,
				fx.Provide(RegisterSnowflake),
				db.Module,
				clock.Module,
				cache.Module,
				lock.Module,
				migration.Module,

				// Admin API and every domain behind it
				server.Module,
			)
			app.Run()
		},
	}
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
