package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	app "github.com/mohammadpnp/padron-import/internal/application/member"
	"github.com/mohammadpnp/padron-import/internal/bootstrap"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/config"
	"github.com/mohammadpnp/padron-import/pkg/logger"
)

const pollInterval = 500 * time.Millisecond

func newImportCmd() *cobra.Command {
	var submittedBy string

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import a member registry spreadsheet and wait for it to finish",
		Long: `Runs one registry import in-process. Members absent from the file are reconciled
exactly as with an HTTP upload. Ctrl-C requests cancellation; committed batches are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("import: read %s: %w", args[0], err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.NewLogger(cfg.LogLevel)
			defer log.Sync()

			container, err := bootstrap.Build(context.Background(), cfg, log)
			if err != nil {
				return err
			}
			defer container.Close(context.Background())

			return runImport(cmd.Context(), cmd.OutOrStdout(), container.Orchestrator, data, submittedBy)
		},
	}

	cmd.Flags().StringVar(&submittedBy, "by", "", "operator recorded as the submitter (required)")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

type importRunner interface {
	app.ImportService
	Wait()
}

func runImport(ctx context.Context, out io.Writer, service importRunner, data []byte, submittedBy string) error {
	started, err := service.StartImport(ctx, app.StartImportInput{Data: data, SubmittedBy: submittedBy})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintf(out, "job %s started\n", started.JobID)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastProgress := -1
	for {
		status := service.GetStatus(started.JobID)
		if status.Progress != lastProgress && !status.Completed {
			fmt.Fprintf(out, "progress %d%% (%d rows)\n", status.Progress, status.Result.TotalRows)
			lastProgress = status.Progress
		}
		if status.Completed {
			service.Wait()
			return printSummary(out, service.GetStatus(started.JobID))
		}

		select {
		case <-interrupt:
			if service.Cancel(started.JobID) {
				fmt.Fprintln(out, "cancellation requested, waiting for the current batch")
			}
		case <-ticker.C:
		}
	}
}

func printSummary(out io.Writer, status app.ImportStatus) error {
	r := status.Result
	fmt.Fprintf(out, "rows: %d  imported: %d (new %d, updated %d)  errors: %d  duplicates: %d\n",
		r.TotalRows, r.Imported, r.NewCount, r.UpdatedCount, r.Errors, r.Duplicates)
	fmt.Fprintf(out, "missing id: %d  missing name: %d  blank: %d\n", r.MissingID, r.MissingName, r.BlankRows)
	fmt.Fprintf(out, "hard deleted: %d  retained: %d  elapsed: %dms (%.0f rows/s)\n",
		r.HardDeleted, r.SoftRetained, r.ElapsedMs, r.RowsPerSecond)
	for _, d := range status.ErrorDetails {
		fmt.Fprintf(out, "  row %d [%s]: %s\n", d.Row, d.Identifier, d.Reason)
	}

	if status.Error != nil {
		return errors.New(*status.Error)
	}
	return nil
}
