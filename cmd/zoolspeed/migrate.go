package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/zoolspeed/internal/config"
	"github.com/smallbiznis/zoolspeed/internal/migration"
	"github.com/smallbiznis/zoolspeed/internal/observability"
	"github.com/smallbiznis/zoolspeed/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func newMigrateCmd() *cobra.Command {
	var (
		down    int
		showVer bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(conn *gorm.DB) error {
				switch {
				case showVer:
					sqlDB, err := conn.DB()
					if err != nil {
						return err
					}
					v, dirty, err := migration.Version(sqlDB)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
					return nil
				case down > 0:
					if conn.Dialector.Name() != "postgres" {
						return errors.New("rollback is only supported on postgres")
					}
					sqlDB, err := conn.DB()
					if err != nil {
						return err
					}
					return migration.Rollback(sqlDB, down)
				default:
					return migration.Migrate(conn)
				}
			})
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "number of versions to roll back (postgres only)")
	cmd.Flags().BoolVar(&showVer, "version", false, "print the applied schema version (postgres only)")
	return cmd
}

// withDB boots just enough of the app to hand fn an open connection.
func withDB(ctx context.Context, fn func(conn *gorm.DB) error) error {
	var conn *gorm.DB
	app := fx.New(
		fx.NopLogger,
		config.Module,
		observability.Module,
		db.Module,
		fx.Populate(&conn),
	)
	if err := app.Err(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(conn)
}
