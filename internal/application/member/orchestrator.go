package member

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/pkg/logger"
	"github.com/mohammadpnp/padron-import/pkg/metrics"
)

const (
	auditModule = "padron"
	auditAction = "import"
)

type StartImportInput struct {
	Data        []byte
	SubmittedBy string
}

type StartImportOutput struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

type ImportResultOutput struct {
	TotalRows        int                     `json:"totalRows"`
	Imported         int                     `json:"imported"`
	NewCount         int                     `json:"newCount"`
	UpdatedCount     int                     `json:"updatedCount"`
	Errors           int                     `json:"errors"`
	Duplicates       int                     `json:"duplicates"`
	DuplicateDetails []DuplicateDetailOutput `json:"duplicateDetails"`
	MissingID        int                     `json:"missingId"`
	MissingName      int                     `json:"missingName"`
	BlankRows        int                     `json:"blankRows"`
	HardDeleted      int64                   `json:"hardDeleted"`
	SoftRetained     int64                   `json:"softRetained"`
	ElapsedMs        int64                   `json:"elapsedMs"`
	RowsPerSecond    float64                 `json:"rowsPerSecond"`
}

type DuplicateDetailOutput struct {
	Row        int    `json:"row"`
	NationalID string `json:"nationalId"`
	FullName   string `json:"fullName"`
	Reason     string `json:"reason"`
}

type ErrorDetailOutput struct {
	Row        int    `json:"row"`
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}

// ImportStatus is the poll response for one job.
type ImportStatus struct {
	JobID        string              `json:"jobId"`
	Found        bool                `json:"found"`
	Progress     int                 `json:"progress"`
	Completed    bool                `json:"completed"`
	Cancelled    bool                `json:"cancelled"`
	Error        *string             `json:"error"`
	Result       ImportResultOutput  `json:"result"`
	ErrorDetails []ErrorDetailOutput `json:"errorDetails"`
}

type ImportService interface {
	StartImport(ctx context.Context, in StartImportInput) (StartImportOutput, error)
	GetStatus(jobID string) ImportStatus
	Cancel(jobID string) bool
}

type importRunner interface {
	Run(ctx context.Context, job JobHandle) (domain.ImportResult, error)
}

type OrchestratorDeps struct {
	Files       domain.FileStore
	Opener      SpreadsheetOpener
	Runner      importRunner
	Audit       domain.AuditSink
	Completions domain.CompletionRecorder
	Metrics     *metrics.ImportMetrics
	Logger      logger.Logger
}

// ImportOrchestrator owns job identity, launches pipelines and answers polls.
type ImportOrchestrator struct {
	deps    OrchestratorDeps
	baseCtx context.Context
	jobs    *jobRegistry
	wg      sync.WaitGroup
	now     func() time.Time
	newID   func() string
}

// NewImportOrchestrator runs jobs under baseCtx; cancelling it stops running jobs cooperatively.
func NewImportOrchestrator(baseCtx context.Context, deps OrchestratorDeps) *ImportOrchestrator {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	return &ImportOrchestrator{
		deps:    deps,
		baseCtx: baseCtx,
		jobs:    newJobRegistry(defaultRetainedJobs),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (o *ImportOrchestrator) StartImport(ctx context.Context, in StartImportInput) (StartImportOutput, error) {
	submittedBy := strings.TrimSpace(in.SubmittedBy)
	if submittedBy == "" {
		return StartImportOutput{}, ErrEmptySubmitter
	}
	if err := o.deps.Opener.Validate(in.Data); err != nil {
		return StartImportOutput{}, err
	}

	jobID := o.newID()
	if err := o.deps.Files.Save(ctx, jobID, in.Data); err != nil {
		return StartImportOutput{}, fmt.Errorf("%w: %v", ErrStoreUpload, err)
	}

	entry := o.jobs.add(domain.ImportJob{
		ID:          jobID,
		SubmittedBy: submittedBy,
		StartedAt:   o.now(),
	})
	o.deps.Logger.Info("import job accepted", "job_id", jobID, "submitted_by", submittedBy, "bytes", len(in.Data))

	o.wg.Add(1)
	go o.run(entry)

	return StartImportOutput{JobID: jobID, Status: "running"}, nil
}

func (o *ImportOrchestrator) GetStatus(jobID string) ImportStatus {
	entry, ok := o.jobs.get(jobID)
	if !ok {
		msg := domain.ErrJobNotFound.Error()
		return ImportStatus{JobID: jobID, Completed: true, Error: &msg}
	}
	return toStatus(entry.Snapshot())
}

func (o *ImportOrchestrator) Cancel(jobID string) bool {
	entry, ok := o.jobs.get(jobID)
	if !ok {
		return false
	}
	requested := entry.requestCancel()
	if requested {
		o.deps.Logger.Info("import cancellation requested", "job_id", jobID)
	}
	return requested
}

// Wait blocks until every launched job has finished.
func (o *ImportOrchestrator) Wait() {
	o.wg.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() when jobs are still running at the deadline.
func (o *ImportOrchestrator) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *ImportOrchestrator) run(entry *jobEntry) {
	defer o.wg.Done()
	if o.deps.Metrics != nil {
		o.deps.Metrics.ActiveJobs.Inc()
		defer o.deps.Metrics.ActiveJobs.Dec()
	}

	var (
		result domain.ImportResult
		err    error
	)
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("import pipeline panic: %v", rec)
			}
		}()
		result, err = o.deps.Runner.Run(o.baseCtx, entry)
	}()

	o.finish(entry, result, err)
}

func (o *ImportOrchestrator) finish(entry *jobEntry, result domain.ImportResult, runErr error) {
	finishedAt := o.now()
	entry.Update(func(job *domain.ImportJob) {
		job.Result = result
		job.Completed = true
		job.FinishedAt = &finishedAt
		switch {
		case errors.Is(runErr, ErrImportCancelled):
			msg := domain.CancelledByUser
			job.Cancelled = true
			job.Error = &msg
		case runErr != nil:
			msg := runErr.Error()
			job.Error = &msg
		default:
			job.Progress = 100
		}
	})
	job := entry.Snapshot()
	outcome := job.Outcome()

	log := o.deps.Logger.With("job_id", job.ID)
	if runErr != nil && outcome == domain.OutcomeFailed {
		log.Error("import job failed", "error", runErr)
	} else {
		log.Info("import job finished", "outcome", outcome, "imported", result.Imported, "elapsed_ms", result.ElapsedMs)
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.JobsTotal.WithLabelValues(string(outcome)).Inc()
	}

	ctx := context.WithoutCancel(o.baseCtx)
	if o.deps.Completions != nil {
		if err := o.deps.Completions.SaveCompletion(ctx, domain.CompletionRecord{
			JobID:        job.ID,
			SubmittedBy:  job.SubmittedBy,
			Outcome:      outcome,
			ErrorMessage: job.Error,
			Result:       job.Result,
			StartedAt:    job.StartedAt,
			FinishedAt:   finishedAt,
		}); err != nil {
			log.Error("save completion record failed", "error", err)
		}
	}
	if o.deps.Audit != nil {
		if err := o.deps.Audit.Record(ctx, domain.AuditEntry{
			Module: auditModule,
			Action: auditAction,
			Detail: auditDetail(job),
			Actor:  job.SubmittedBy,
			Origin: "import-job:" + job.ID,
			At:     finishedAt,
		}); err != nil {
			log.Error("audit record failed", "error", err)
		}
	}
}

func auditDetail(job domain.ImportJob) string {
	r := job.Result
	detail := fmt.Sprintf(
		"outcome=%s total=%d imported=%d new=%d updated=%d errors=%d duplicates=%d hard_deleted=%d soft_retained=%d elapsed_ms=%d",
		job.Outcome(), r.TotalRows, r.Imported, r.NewCount, r.UpdatedCount, r.Errors, r.Duplicates, r.HardDeleted, r.SoftRetained, r.ElapsedMs,
	)
	if job.Error != nil {
		detail += " error=" + *job.Error
	}
	return detail
}

func toStatus(job domain.ImportJob) ImportStatus {
	r := job.Result
	duplicates := make([]DuplicateDetailOutput, 0, len(r.DuplicateDetails))
	for _, d := range r.DuplicateDetails {
		duplicates = append(duplicates, DuplicateDetailOutput{Row: d.Row, NationalID: d.NationalID, FullName: d.FullName, Reason: d.Reason})
	}
	details := make([]ErrorDetailOutput, 0, len(job.ErrorDetails))
	for _, d := range job.ErrorDetails {
		details = append(details, ErrorDetailOutput{Row: d.Row, Identifier: d.Identifier, Reason: d.Reason})
	}

	return ImportStatus{
		JobID:     job.ID,
		Found:     true,
		Progress:  job.Progress,
		Completed: job.Completed,
		Cancelled: job.Cancelled,
		Error:     job.Error,
		Result: ImportResultOutput{
			TotalRows:        r.TotalRows,
			Imported:         r.Imported,
			NewCount:         r.NewCount,
			UpdatedCount:     r.UpdatedCount,
			Errors:           r.Errors,
			Duplicates:       r.Duplicates,
			DuplicateDetails: duplicates,
			MissingID:        r.MissingID,
			MissingName:      r.MissingName,
			BlankRows:        r.BlankRows,
			HardDeleted:      r.HardDeleted,
			SoftRetained:     r.SoftRetained,
			ElapsedMs:        r.ElapsedMs,
			RowsPerSecond:    r.RowsPerSecond,
		},
		ErrorDetails: details,
	}
}
