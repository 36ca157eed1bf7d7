package member_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	app "github.com/mohammadpnp/padron-import/internal/application/member"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
)

// memoryRegistry is an in-memory member store that honours dependent records.
type memoryRegistry struct {
	mu         sync.Mutex
	members    map[string]domain.Member
	dependents map[string]bool
	branches   []domain.Branch
	nextID     uint

	failIDs  map[string]bool
	onUpsert func(jobID string, call int)
	upserts  int
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{
		members:    make(map[string]domain.Member),
		dependents: make(map[string]bool),
		failIDs:    make(map[string]bool),
	}
}

func (r *memoryRegistry) seed(nationalID, name string, hasDependents bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.members[nationalID] = domain.Member{
		ID:           r.nextID,
		MemberNumber: nationalID,
		NationalID:   nationalID,
		FullName:     name,
		InRegistry:   true,
	}
	if hasDependents {
		r.dependents[nationalID] = true
	}
}

func (r *memoryRegistry) member(nationalID string) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[nationalID]
	return m, ok
}

func (r *memoryRegistry) nationalIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *memoryRegistry) UpsertBatch(ctx context.Context, jobID string, records []domain.Record) (int64, error) {
	r.mu.Lock()
	r.upserts++
	call := r.upserts
	for _, rec := range records {
		if r.failIDs[rec.NationalID] {
			r.mu.Unlock()
			return 0, fmt.Errorf("constraint violation on %s", rec.NationalID)
		}
	}
	for _, rec := range records {
		existing, ok := r.members[rec.NationalID]
		if !ok {
			r.nextID++
			existing.ID = r.nextID
		}
		existing.MemberNumber = rec.MemberNumber
		existing.NationalID = rec.NationalID
		existing.FullName = rec.FullName
		existing.Phone = rec.Phone
		existing.BranchID = rec.BranchID
		existing.Flags = rec.Flags
		existing.InRegistry = true
		r.members[rec.NationalID] = existing
	}
	hook := r.onUpsert
	r.mu.Unlock()

	if hook != nil {
		hook(jobID, call)
	}
	return int64(len(records)), nil
}

func (r *memoryRegistry) KnownNationalIDs(ctx context.Context) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]struct{}, len(r.members))
	for id := range r.members {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *memoryRegistry) SnapshotDependents(ctx context.Context, jobID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.dependents)), nil
}

func (r *memoryRegistry) MarkAllStale(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.members {
		m.InRegistry = false
		r.members[id] = m
	}
	return int64(len(r.members)), nil
}

func (r *memoryRegistry) CountStaleWithDependents(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.members {
		if !m.InRegistry && r.dependents[id] {
			n++
		}
	}
	return n, nil
}

func (r *memoryRegistry) DeleteStaleWithoutDependents(ctx context.Context, keep []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	protected := make(map[string]bool, len(keep))
	for _, id := range keep {
		protected[id] = true
	}
	var n int64
	for id, m := range r.members {
		if m.InRegistry || r.dependents[id] || protected[id] {
			continue
		}
		delete(r.members, id)
		n++
	}
	return n, nil
}

func (r *memoryRegistry) ReactivateWithDependents(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.members {
		if !m.InRegistry && r.dependents[id] {
			m.InRegistry = true
			r.members[id] = m
			n++
		}
	}
	return n, nil
}

func (r *memoryRegistry) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Branch(nil), r.branches...), nil
}

func (r *memoryRegistry) CreateBranch(ctx context.Context, branch domain.Branch) (domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	branch.ID = uint(len(r.branches) + 1)
	r.branches = append(r.branches, branch)
	return branch, nil
}

type memoryFiles struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{files: make(map[string][]byte)}
}

func (f *memoryFiles) Save(ctx context.Context, jobID string, data []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.files[jobID]; exists {
		return errors.New("file already exists")
	}
	f.files[jobID] = append([]byte(nil), data...)
	return nil
}

func (f *memoryFiles) Open(ctx context.Context, jobID string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[jobID]
	if !ok {
		return nil, 0, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

// csvOpener stands in for the spreadsheet reader: uploads are CSV text in tests.
type csvOpener struct{}

func (csvOpener) Validate(data []byte) error {
	if len(data) == 0 || bytes.HasPrefix(data, []byte("%PDF")) {
		return domain.ErrInvalidFileKind
	}
	return nil
}

func (csvOpener) Open(r io.Reader) (app.RowIterator, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return &sliceRows{rows: rows, idx: -1}, nil
}

type sliceRows struct {
	rows [][]string
	idx  int
}

func (s *sliceRows) Next() bool {
	s.idx++
	return s.idx < len(s.rows)
}

func (s *sliceRows) Columns() ([]string, error) {
	return s.rows[s.idx], nil
}

func (s *sliceRows) Err() error   { return nil }
func (s *sliceRows) Close() error { return nil }

type fakeStaff struct {
	ids map[string]struct{}
}

func (f fakeStaff) StaffNationalIDs(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(f.ids))
	for id := range f.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

type fakeOperators struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeOperators) CreateOperatorAccount(ctx context.Context, record domain.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, record.NationalID)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (f *fakeAudit) Record(ctx context.Context, entry domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

type fakeCompletions struct {
	mu      sync.Mutex
	records []domain.CompletionRecord
}

func (f *fakeCompletions) SaveCompletion(ctx context.Context, record domain.CompletionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

// stubJob is a JobHandle for driving the pipeline directly.
type stubJob struct {
	id     string
	mu     sync.Mutex
	job    domain.ImportJob
	cancel bool
}

func (s *stubJob) ID() string { return s.id }

func (s *stubJob) CancelRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel
}

func (s *stubJob) Update(fn func(job *domain.ImportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.job)
}

func sheet(rows ...string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(row)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
