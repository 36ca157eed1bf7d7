package member

import (
	"context"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/pkg/logger"
	"github.com/mohammadpnp/padron-import/pkg/metrics"
)

const defaultBatchSize = 500

type BatchStats struct {
	Imported int
	New      int
	Updated  int
	Failed   int
}

// BatchWriter buffers records and upserts them in bounded batches, one transaction per batch.
type BatchWriter struct {
	jobID     string
	store     domain.MemberUpserter
	known     map[string]struct{}
	batchSize int

	pending        []domain.Record
	stats          BatchStats
	failedIDs      []string
	reportError    func(domain.ErrorDetail)
	afterCommit    func(ctx context.Context, committed []domain.Record)
	metrics        *metrics.ImportMetrics
	logger         logger.Logger
	batchesFlushed int
}

type BatchWriterConfig struct {
	JobID       string
	BatchSize   int
	Known       map[string]struct{}
	ReportError func(domain.ErrorDetail)
	AfterCommit func(ctx context.Context, committed []domain.Record)
	Metrics     *metrics.ImportMetrics
	Logger      logger.Logger
}

func NewBatchWriter(store domain.MemberUpserter, cfg BatchWriterConfig) *BatchWriter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Known == nil {
		cfg.Known = make(map[string]struct{})
	}
	if cfg.ReportError == nil {
		cfg.ReportError = func(domain.ErrorDetail) {}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	return &BatchWriter{
		jobID:       cfg.JobID,
		store:       store,
		known:       cfg.Known,
		batchSize:   cfg.BatchSize,
		pending:     make([]domain.Record, 0, cfg.BatchSize),
		reportError: cfg.ReportError,
		afterCommit: cfg.AfterCommit,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// Add buffers record and flushes once the batch is full.
func (w *BatchWriter) Add(ctx context.Context, record domain.Record) {
	w.pending = append(w.pending, record)
	if len(w.pending) >= w.batchSize {
		w.Flush(ctx)
	}
}

// Flush writes the pending batch. A failed batch is retried row by row so that only the
// offending rows are reported.
func (w *BatchWriter) Flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	batch := w.pending
	w.pending = make([]domain.Record, 0, w.batchSize)

	err := w.write(ctx, batch)
	if err == nil {
		w.commit(ctx, batch)
		return
	}

	w.logger.Warn("batch upsert failed, retrying row by row", "rows", len(batch), "error", err)
	committed := make([]domain.Record, 0, len(batch))
	for _, record := range batch {
		if rowErr := w.write(ctx, []domain.Record{record}); rowErr != nil {
			w.stats.Failed++
			w.failedIDs = append(w.failedIDs, record.NationalID)
			w.reportError(domain.ErrorDetail{
				Row:        record.RowNumber,
				Identifier: record.NationalID,
				Reason:     fmt.Sprintf("write failed: %v", rowErr),
			})
			continue
		}
		committed = append(committed, record)
	}
	if len(committed) > 0 {
		w.commit(ctx, committed)
	}
}

// Discard drops rows that were buffered but not yet written.
func (w *BatchWriter) Discard() int {
	n := len(w.pending)
	w.pending = w.pending[:0]
	return n
}

func (w *BatchWriter) Stats() BatchStats {
	return w.stats
}

// FailedNationalIDs lists rows present in the file whose write failed.
func (w *BatchWriter) FailedNationalIDs() []string {
	return append([]string(nil), w.failedIDs...)
}

func (w *BatchWriter) write(ctx context.Context, batch []domain.Record) error {
	started := time.Now()
	_, err := w.store.UpsertBatch(ctx, w.jobID, batch)
	if w.metrics != nil {
		w.metrics.BatchDuration.Observe(time.Since(started).Seconds())
	}
	return err
}

func (w *BatchWriter) commit(ctx context.Context, committed []domain.Record) {
	for _, record := range committed {
		if _, existed := w.known[record.NationalID]; existed {
			w.stats.Updated++
		} else {
			w.stats.New++
			w.known[record.NationalID] = struct{}{}
		}
	}
	w.stats.Imported += len(committed)
	w.batchesFlushed++
	w.logger.Debug("batch committed", "batch", w.batchesFlushed, "rows", len(committed), "imported", w.stats.Imported)

	if w.afterCommit != nil {
		w.afterCommit(ctx, committed)
	}
}
