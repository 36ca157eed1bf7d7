package repository_test

import (
	"context"
	"testing"
	"time"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
)

func TestImportJobRepositorySaveAndFind(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	repo := repository.NewImportJobRepository(gdb)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := domain.CancelledByUser
	record := domain.CompletionRecord{
		JobID:        "6f1c1d4e-0b7a-4d7e-9d35-1f2a3b4c5d6e",
		SubmittedBy:  "ana.operadora",
		Outcome:      domain.OutcomeCancelled,
		ErrorMessage: &msg,
		Result:       domain.ImportResult{TotalRows: 10, Imported: 4, NewCount: 3, UpdatedCount: 1, Duplicates: 2, ElapsedMs: 1500},
		StartedAt:    started,
		FinishedAt:   started.Add(1500 * time.Millisecond),
	}
	require.NoError(t, repo.SaveCompletion(ctx, record))

	got, err := repo.FindByID(ctx, record.JobID)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCancelled, got.Outcome)
	require.Equal(t, 4, got.Result.Imported)
	require.Equal(t, 2, got.Result.Duplicates)
	require.NotNil(t, got.ErrorMessage)
	require.Equal(t, msg, *got.ErrorMessage)

	record.Outcome = domain.OutcomeFailed
	require.NoError(t, repo.SaveCompletion(ctx, record))
	got, err = repo.FindByID(ctx, record.JobID)
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeFailed, got.Outcome)
}

func TestImportJobRepositoryFindMissing(t *testing.T) {
	gdb := openTestDB(t)

	_, err := repository.NewImportJobRepository(gdb).FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrJobNotFound)
}
