package member

import (
	"context"
	"io"
	"time"
)

// RegistryStore exposes the reconciliation primitives over persisted members.
type RegistryStore interface {
	KnownNationalIDs(ctx context.Context) (map[string]struct{}, error)
	SnapshotDependents(ctx context.Context, jobID string) (int64, error)
	MarkAllStale(ctx context.Context) (int64, error)
	CountStaleWithDependents(ctx context.Context) (int64, error)
	// DeleteStaleWithoutDependents never touches members whose national id is in keep.
	DeleteStaleWithoutDependents(ctx context.Context, keep []string) (int64, error)
	ReactivateWithDependents(ctx context.Context) (int64, error)
}

// MemberUpserter writes one batch atomically, marking every row as present in the registry.
type MemberUpserter interface {
	UpsertBatch(ctx context.Context, jobID string, records []Record) (int64, error)
}

type BranchStore interface {
	ListBranches(ctx context.Context) ([]Branch, error)
	CreateBranch(ctx context.Context, branch Branch) (Branch, error)
}

// FileStore is a write-once durable sink keyed by job id.
type FileStore interface {
	Save(ctx context.Context, jobID string, data []byte) error
	Open(ctx context.Context, jobID string) (io.ReadCloser, int64, error)
}

type AuditEntry struct {
	Module string
	Action string
	Detail string
	Actor  string
	Origin string
	At     time.Time
}

type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type StaffRegistry interface {
	StaffNationalIDs(ctx context.Context) (map[string]struct{}, error)
}

type OperatorAccountService interface {
	CreateOperatorAccount(ctx context.Context, record Record) error
}

type CompletionRecorder interface {
	SaveCompletion(ctx context.Context, record CompletionRecord) error
}
