package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImportJobRepository struct {
	db *gorm.DB
}

func NewImportJobRepository(db *gorm.DB) *ImportJobRepository {
	return &ImportJobRepository{db: db}
}

func (r *ImportJobRepository) SaveCompletion(ctx context.Context, record domain.CompletionRecord) error {
	res := record.Result
	job := models.ImportJob{
		ID:             record.JobID,
		SubmittedBy:    record.SubmittedBy,
		Outcome:        string(record.Outcome),
		ErrorMessage:   record.ErrorMessage,
		TotalRows:      int64(res.TotalRows),
		ImportedCount:  int64(res.Imported),
		NewCount:       int64(res.NewCount),
		UpdatedCount:   int64(res.UpdatedCount),
		ErrorCount:     int64(res.Errors),
		DuplicateCount: int64(res.Duplicates),
		MissingID:      int64(res.MissingID),
		MissingName:    int64(res.MissingName),
		BlankRows:      int64(res.BlankRows),
		HardDeleted:    res.HardDeleted,
		SoftRetained:   res.SoftRetained,
		ElapsedMs:      res.ElapsedMs,
		StartedAt:      record.StartedAt,
		FinishedAt:     record.FinishedAt,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&job).Error
	if err != nil {
		return fmt.Errorf("save import job %s: %w", record.JobID, err)
	}
	return nil
}

// FindByID returns the completion record of a finished job.
func (r *ImportJobRepository) FindByID(ctx context.Context, jobID string) (domain.CompletionRecord, error) {
	var job models.ImportJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CompletionRecord{}, domain.ErrJobNotFound
		}
		return domain.CompletionRecord{}, fmt.Errorf("find import job %s: %w", jobID, err)
	}

	return domain.CompletionRecord{
		JobID:        job.ID,
		SubmittedBy:  job.SubmittedBy,
		Outcome:      domain.Outcome(job.Outcome),
		ErrorMessage: job.ErrorMessage,
		Result: domain.ImportResult{
			TotalRows:    int(job.TotalRows),
			Imported:     int(job.ImportedCount),
			NewCount:     int(job.NewCount),
			UpdatedCount: int(job.UpdatedCount),
			Errors:       int(job.ErrorCount),
			Duplicates:   int(job.DuplicateCount),
			MissingID:    int(job.MissingID),
			MissingName:  int(job.MissingName),
			BlankRows:    int(job.BlankRows),
			HardDeleted:  job.HardDeleted,
			SoftRetained: job.SoftRetained,
			ElapsedMs:    job.ElapsedMs,
		},
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}, nil
}
