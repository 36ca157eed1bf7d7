package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammadpnp/padron-import/internal/infrastructure/config"
	infradb "github.com/mohammadpnp/padron-import/internal/infrastructure/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Creates every table used by the import service. Safe to run multiple times.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gdb, err := infradb.OpenPostgres(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := infradb.Migrate(cmd.Context(), gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
