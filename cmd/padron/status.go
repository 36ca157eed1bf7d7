package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/config"
	infradb "github.com/mohammadpnp/padron-import/internal/infrastructure/db"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/repository"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the completion record of a finished import job",
		Args:  cobra.ExactArgs(1),
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

			record, err := repository.NewImportJobRepository(gdb).FindByID(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrJobNotFound) {
				return fmt.Errorf("status: no finished job %s", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "job %s by %s: %s\n", record.JobID, record.SubmittedBy, record.Outcome)
			fmt.Fprintf(out, "started %s, finished %s\n", record.StartedAt.Format("2006-01-02 15:04:05"), record.FinishedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "rows: %d  imported: %d  errors: %d  duplicates: %d  hard deleted: %d  retained: %d\n",
				record.Result.TotalRows, record.Result.Imported, record.Result.Errors, record.Result.Duplicates,
				record.Result.HardDeleted, record.Result.SoftRetained)
			if record.ErrorMessage != nil {
				fmt.Fprintf(out, "error: %s\n", *record.ErrorMessage)
			}
			return nil
		},
	}
}
