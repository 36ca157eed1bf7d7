package member

import (
	"sync"
	"sync/atomic"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
)

const defaultRetainedJobs = 200

// jobEntry guards one job's status. Readers always receive a deep copy.
type jobEntry struct {
	mu     sync.RWMutex
	job    domain.ImportJob
	cancel atomic.Bool
}

func (e *jobEntry) ID() string {
	return e.job.ID
}

func (e *jobEntry) CancelRequested() bool {
	return e.cancel.Load()
}

func (e *jobEntry) Update(fn func(job *domain.ImportJob)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.job)
}

func (e *jobEntry) Snapshot() domain.ImportJob {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.job.Clone()
}

// requestCancel flags a running job; it reports false once the job has completed.
func (e *jobEntry) requestCancel() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.job.Completed {
		return false
	}
	e.cancel.Store(true)
	return true
}

// jobRegistry keeps the most recent jobs, evicting the oldest completed ones past the limit.
type jobRegistry struct {
	mu    sync.RWMutex
	jobs  map[string]*jobEntry
	order []string
	limit int
}

func newJobRegistry(limit int) *jobRegistry {
	if limit <= 0 {
		limit = defaultRetainedJobs
	}
	return &jobRegistry{jobs: make(map[string]*jobEntry), limit: limit}
}

func (r *jobRegistry) add(job domain.ImportJob) *jobEntry {
	entry := &jobEntry{job: job}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = entry
	r.order = append(r.order, job.ID)
	r.evictLocked()
	return entry
}

func (r *jobRegistry) get(id string) (*jobEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.jobs[id]
	return entry, ok
}

func (r *jobRegistry) evictLocked() {
	if len(r.order) <= r.limit {
		return
	}
	kept := r.order[:0]
	excess := len(r.order) - r.limit
	for _, id := range r.order {
		entry := r.jobs[id]
		if excess > 0 && entry.Snapshot().Completed {
			delete(r.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}
