package member

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/pkg/logger"
	"github.com/mohammadpnp/padron-import/pkg/metrics"
)

const (
	defaultProgressInterval = 100
	defaultBytesPerRow      = 60
	maxRunningProgress      = 95
)

// RowIterator streams spreadsheet rows; the first row is the header.
type RowIterator interface {
	Next() bool
	Columns() ([]string, error)
	Err() error
	Close() error
}

type SpreadsheetOpener interface {
	// Validate rejects payloads that are not a spreadsheet with ErrInvalidFileKind.
	Validate(data []byte) error
	Open(r io.Reader) (RowIterator, error)
}

// JobHandle is the pipeline's view of the job it is running.
type JobHandle interface {
	ID() string
	CancelRequested() bool
	Update(fn func(job *domain.ImportJob))
}

type PipelineConfig struct {
	BatchSize        int
	ProgressInterval int
	BytesPerRow      int64
	CountryCode      string
	Branches         BranchCatalogue
}

type PipelineDeps struct {
	Files     domain.FileStore
	Opener    SpreadsheetOpener
	Upserter  domain.MemberUpserter
	Registry  domain.RegistryStore
	Branches  domain.BranchStore
	Staff     domain.StaffRegistry
	Operators domain.OperatorAccountService
	Metrics   *metrics.ImportMetrics
	Logger    logger.Logger
}

// Pipeline runs one registry import from the stored file to reconciliation.
type Pipeline struct {
	deps PipelineDeps
	cfg  PipelineConfig
}

func NewPipeline(deps PipelineDeps, cfg PipelineConfig) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = defaultProgressInterval
	}
	if cfg.BytesPerRow <= 0 {
		cfg.BytesPerRow = defaultBytesPerRow
	}
	if cfg.Branches == nil {
		cfg.Branches = DefaultBranchCatalogue()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	return &Pipeline{deps: deps, cfg: cfg}
}

// runState accumulates the job result; it is owned by the pipeline goroutine.
type runState struct {
	result       domain.ImportResult
	errorDetails []domain.ErrorDetail
}

func (s *runState) addError(detail domain.ErrorDetail) {
	s.result.Errors++
	if len(s.errorDetails) < domain.MaxErrorDetails {
		s.errorDetails = append(s.errorDetails, detail)
	}
}

func (s *runState) addDuplicate(detail domain.DuplicateDetail) {
	s.result.Duplicates++
	if len(s.result.DuplicateDetails) < domain.MaxDuplicateDetails {
		s.result.DuplicateDetails = append(s.result.DuplicateDetails, detail)
	}
}

func (s *runState) snapshot(stats BatchStats) (domain.ImportResult, []domain.ErrorDetail) {
	result := s.result
	result.Imported = stats.Imported
	result.NewCount = stats.New
	result.UpdatedCount = stats.Updated
	result.DuplicateDetails = append([]domain.DuplicateDetail(nil), s.result.DuplicateDetails...)
	return result, append([]domain.ErrorDetail(nil), s.errorDetails...)
}

// Run processes the job's file. The returned result is filled in even when an error
// (fatal or ErrImportCancelled) cuts the run short.
func (p *Pipeline) Run(ctx context.Context, job JobHandle) (domain.ImportResult, error) {
	started := time.Now()
	log := p.deps.Logger.With("job_id", job.ID())
	state := &runState{}

	finish := func(stats BatchStats) domain.ImportResult {
		result, details := state.snapshot(stats)
		elapsed := time.Since(started)
		result.ElapsedMs = elapsed.Milliseconds()
		if secs := elapsed.Seconds(); secs > 0 {
			result.RowsPerSecond = float64(result.TotalRows) / secs
		}
		job.Update(func(j *domain.ImportJob) {
			j.Result = result
			j.ErrorDetails = details
		})
		return result
	}

	reader, size, err := p.deps.Files.Open(ctx, job.ID())
	if err != nil {
		return finish(BatchStats{}), fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	defer reader.Close()
	estimatedRows := estimateRows(size, p.cfg.BytesPerRow)

	rows, err := p.deps.Opener.Open(reader)
	if err != nil {
		return finish(BatchStats{}), fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return finish(BatchStats{}), fmt.Errorf("%w: %v", domain.ErrUnreadableFile, rowsErr)
		}
		return finish(BatchStats{}), fmt.Errorf("%w: spreadsheet has no header row", domain.ErrMissingCriticalColumns)
	}
	header, err := rows.Columns()
	if err != nil {
		return finish(BatchStats{}), fmt.Errorf("%w: read header: %v", domain.ErrUnreadableFile, err)
	}
	mapping, err := domain.ResolveColumns(header)
	if err != nil {
		return finish(BatchStats{}), err
	}
	log.Info("columns resolved", "mapping", mapping.Roles(), "estimated_rows", estimatedRows)

	known, err := p.deps.Registry.KnownNationalIDs(ctx)
	if err != nil {
		return finish(BatchStats{}), fmt.Errorf("load known members: %w", err)
	}
	staff := map[string]struct{}{}
	if p.deps.Staff != nil {
		if staff, err = p.deps.Staff.StaffNationalIDs(ctx); err != nil {
			log.Warn("load staff registry failed, skipping operator provisioning", "error", err)
			staff = map[string]struct{}{}
		}
	}
	branches, err := NewBranchResolver(ctx, p.deps.Branches, p.cfg.Branches, log)
	if err != nil {
		return finish(BatchStats{}), err
	}

	reconciler := NewReconciler(p.deps.Registry, job.ID(), log)
	if err := reconciler.Prepare(ctx); err != nil {
		return finish(BatchStats{}), err
	}

	provisioner := newStaffProvisioner(staff, p.deps.Operators, log)
	writer := NewBatchWriter(p.deps.Upserter, BatchWriterConfig{
		JobID:       job.ID(),
		BatchSize:   p.cfg.BatchSize,
		Known:       known,
		ReportError: state.addError,
		AfterCommit: provisioner.provision,
		Metrics:     p.deps.Metrics,
		Logger:      log,
	})
	normalizer := NewRowNormalizer(mapping, domain.NewPhoneNormalizer(p.cfg.CountryCode), branches)
	dedup := NewDeduplicator()

	abort := func(cause error) (domain.ImportResult, error) {
		discarded := writer.Discard()
		if err := reconciler.Abort(context.WithoutCancel(ctx)); err != nil {
			log.Error("abort reconciliation failed", "error", err)
		}
		log.Warn("import stopped early", "reason", cause, "discarded_rows", discarded)
		return finish(writer.Stats()), cause
	}

	rowNumber := 1
	processed := 0
	for rows.Next() {
		rowNumber++
		processed++

		cells, err := rows.Columns()
		if err != nil {
			return abort(fmt.Errorf("%w: row %d: %v", domain.ErrUnreadableFile, rowNumber, err))
		}
		p.processRow(ctx, state, normalizer, dedup, writer, rowNumber, cells)

		if processed%p.cfg.ProgressInterval == 0 {
			p.reportProgress(job, state, writer.Stats(), processed, estimatedRows)
			if job.CancelRequested() || ctx.Err() != nil {
				return abort(ErrImportCancelled)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return abort(fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err))
	}

	writer.Flush(ctx)
	if job.CancelRequested() || ctx.Err() != nil {
		return abort(ErrImportCancelled)
	}

	reconciled, err := reconciler.Finalize(ctx, writer.FailedNationalIDs())
	if err != nil {
		if abortErr := reconciler.Abort(context.WithoutCancel(ctx)); abortErr != nil {
			log.Error("abort reconciliation failed", "error", abortErr)
		}
		return finish(writer.Stats()), err
	}
	state.result.HardDeleted = reconciled.HardDeleted
	state.result.SoftRetained = reconciled.SoftRetained

	result := finish(writer.Stats())
	log.Info("import pipeline finished",
		"total_rows", result.TotalRows,
		"imported", result.Imported,
		"errors", result.Errors,
		"duplicates", result.Duplicates,
		"branches_created", branches.Created(),
		"operator_accounts", provisioner.succeeded,
	)
	return result, nil
}

func (p *Pipeline) processRow(ctx context.Context, state *runState, normalizer *RowNormalizer, dedup *Deduplicator, writer *BatchWriter, rowNumber int, cells []string) {
	record, err := normalizer.Normalize(ctx, rowNumber, cells)
	switch {
	case errors.Is(err, errBlankRow):
		state.result.BlankRows++
		p.countRow("blank")
		return
	case errors.Is(err, domain.ErrMissingNationalID):
		state.result.TotalRows++
		state.result.MissingID++
		state.addError(domain.ErrorDetail{Row: rowNumber, Identifier: record.FullName, Reason: err.Error()})
		p.countRow("missing_id")
		return
	case errors.Is(err, domain.ErrMissingFullName):
		state.result.TotalRows++
		state.result.MissingName++
		state.addError(domain.ErrorDetail{Row: rowNumber, Identifier: record.NationalID, Reason: err.Error()})
		p.countRow("missing_name")
		return
	}
	state.result.TotalRows++

	if first, duplicate := dedup.Check(record.NationalID, rowNumber); duplicate {
		state.addDuplicate(domain.DuplicateDetail{
			Row:        rowNumber,
			NationalID: record.NationalID,
			FullName:   record.FullName,
			Reason:     fmt.Sprintf("national id already seen at row %d", first),
		})
		p.countRow("duplicate")
		return
	}

	writer.Add(ctx, record)
	p.countRow("accepted")
}

func (p *Pipeline) reportProgress(job JobHandle, state *runState, stats BatchStats, processed, estimated int) {
	progress := estimateProgress(processed, estimated)
	result, details := state.snapshot(stats)
	job.Update(func(j *domain.ImportJob) {
		j.Progress = progress
		j.Result = result
		j.ErrorDetails = details
	})
}

func (p *Pipeline) countRow(result string) {
	if p.deps.Metrics != nil {
		p.deps.Metrics.RowsTotal.WithLabelValues(result).Inc()
	}
}

func estimateRows(size, bytesPerRow int64) int {
	if size <= 0 || bytesPerRow <= 0 {
		return 1
	}
	if rows := int(size / bytesPerRow); rows > 0 {
		return rows
	}
	return 1
}

// estimateProgress caps at maxRunningProgress; 100 is reserved for true completion.
func estimateProgress(processed, estimated int) int {
	if estimated <= 0 {
		return 0
	}
	progress := processed * 100 / estimated
	if progress > maxRunningProgress {
		return maxRunningProgress
	}
	return progress
}
