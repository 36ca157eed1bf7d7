package member

import "time"

const (
	MaxDuplicateDetails = 500
	MaxErrorDetails     = 100
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

const CancelledByUser = "cancelled by user"

type DuplicateDetail struct {
	Row        int
	NationalID string
	FullName   string
	Reason     string
}

type ErrorDetail struct {
	Row        int
	Identifier string
	Reason     string
}

type ImportResult struct {
	TotalRows        int
	Imported         int
	NewCount         int
	UpdatedCount     int
	Errors           int
	Duplicates       int
	DuplicateDetails []DuplicateDetail
	MissingID        int
	MissingName      int
	BlankRows        int
	HardDeleted      int64
	SoftRetained     int64
	ElapsedMs        int64
	RowsPerSecond    float64
}

// ImportJob is the observable state of one asynchronous import run.
type ImportJob struct {
	ID           string
	SubmittedBy  string
	Progress     int
	Completed    bool
	Cancelled    bool
	Error        *string
	Result       ImportResult
	ErrorDetails []ErrorDetail
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Clone returns a copy that shares no slices or pointers with j.
func (j ImportJob) Clone() ImportJob {
	out := j
	if j.Error != nil {
		msg := *j.Error
		out.Error = &msg
	}
	if j.FinishedAt != nil {
		at := *j.FinishedAt
		out.FinishedAt = &at
	}
	out.ErrorDetails = append([]ErrorDetail(nil), j.ErrorDetails...)
	out.Result.DuplicateDetails = append([]DuplicateDetail(nil), j.Result.DuplicateDetails...)
	return out
}

// Outcome classifies a completed job.
func (j ImportJob) Outcome() Outcome {
	switch {
	case j.Cancelled:
		return OutcomeCancelled
	case j.Error != nil:
		return OutcomeFailed
	default:
		return OutcomeSucceeded
	}
}

// CompletionRecord is the persisted summary written once a job reaches a terminal state.
type CompletionRecord struct {
	JobID        string
	SubmittedBy  string
	Outcome      Outcome
	ErrorMessage *string
	Result       ImportResult
	StartedAt    time.Time
	FinishedAt   time.Time
}
