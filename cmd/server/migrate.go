package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/arturoeanton/controle-estoque/internal/adapter/store"
)

const directionFlag = "direction"

var migrateFlags = withEnvFile(map[string]cobraflags.Flag{
	directionFlag: &cobraflags.StringFlag{
		Name:  directionFlag,
		Value: "up",
		Usage: "Migration direction (up, down). down reverts the latest applied migration",
	},
})

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert database migrations",
		RunE:  migrateCommand,
	}
	cobraflags.RegisterMap(cmd, migrateFlags)
	return cmd
}

func migrateCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(migrateFlags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database %s: %w", cfg.DSN(), err)
	}
	defer pgStore.Close()

	switch direction := migrateFlags[directionFlag].GetString(); direction {
	case "up":
		applied, err := pgStore.MigrateUp(ctx, store.Migrations())
		if err != nil {
			return err
		}
		slog.Info("migrations applied", "count", applied)
	case "down":
		if err := pgStore.MigrateDown(ctx, store.Migrations()); err != nil {
			return err
		}
		slog.Info("latest migration reverted")
	default:
		return fmt.Errorf("unknown direction %q: want up or down", direction)
	}
	return nil
}
