package member

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
	"github.com/mohammadpnp/padron-import/pkg/logger"
)

type reconcilePhase int

const (
	phasePending reconcilePhase = iota
	phaseStaled
	phaseReconciled
	phaseAborted
)

func (p reconcilePhase) String() string {
	switch p {
	case phasePending:
		return "pending"
	case phaseStaled:
		return "staled"
	case phaseReconciled:
		return "reconciled"
	case phaseAborted:
		return "aborted"
	}
	return "unknown"
}

type ReconcileResult struct {
	Snapshotted  int64
	Staled       int64
	HardDeleted  int64
	SoftRetained int64
	Reactivated  int64
}

// Reconciler drives the stale → reconciled lifecycle of the registry for one job.
//
// Prepare snapshots dependent records and flags every member as not in the registry.
// Upserts during the run flip the flag back. Finalize deletes stale members without
// dependents and reactivates every member that has one. Abort only reactivates.
type Reconciler struct {
	store  domain.RegistryStore
	jobID  string
	phase  reconcilePhase
	result ReconcileResult
	logger logger.Logger
}

func NewReconciler(store domain.RegistryStore, jobID string, log logger.Logger) *Reconciler {
	return &Reconciler{store: store, jobID: jobID, logger: log}
}

func (r *Reconciler) Prepare(ctx context.Context) error {
	if err := r.expect(phasePending); err != nil {
		return err
	}

	snapshotted, err := r.store.SnapshotDependents(ctx, r.jobID)
	if err != nil {
		return fmt.Errorf("snapshot dependent records: %w", err)
	}
	staled, err := r.store.MarkAllStale(ctx)
	if err != nil {
		return fmt.Errorf("mark members stale: %w", err)
	}

	r.result.Snapshotted = snapshotted
	r.result.Staled = staled
	r.phase = phaseStaled
	r.logger.Info("registry marked stale", "snapshotted_dependents", snapshotted, "staled_members", staled)
	return nil
}

// Finalize runs the post-pass. Members whose national id is in protect were present in
// the file but failed to write, so they are never deleted.
func (r *Reconciler) Finalize(ctx context.Context, protect []string) (ReconcileResult, error) {
	if err := r.expect(phaseStaled); err != nil {
		return r.result, err
	}

	retained, err := r.store.CountStaleWithDependents(ctx)
	if err != nil {
		return r.result, fmt.Errorf("count retained members: %w", err)
	}
	deleted, err := r.store.DeleteStaleWithoutDependents(ctx, protect)
	if err != nil {
		return r.result, fmt.Errorf("delete stale members: %w", err)
	}
	reactivated, err := r.store.ReactivateWithDependents(ctx)
	if err != nil {
		return r.result, fmt.Errorf("reactivate members with dependents: %w", err)
	}

	r.result.SoftRetained = retained
	r.result.HardDeleted = deleted
	r.result.Reactivated = reactivated
	r.phase = phaseReconciled
	r.logger.Info("registry reconciled",
		"hard_deleted", deleted,
		"soft_retained", retained,
		"reactivated", reactivated,
	)
	return r.result, nil
}

// Abort skips deletion and only restores members that carry dependent records.
func (r *Reconciler) Abort(ctx context.Context) error {
	if r.phase != phaseStaled {
		return nil
	}
	reactivated, err := r.store.ReactivateWithDependents(ctx)
	r.phase = phaseAborted
	if err != nil {
		return fmt.Errorf("reactivate members with dependents: %w", err)
	}
	r.result.Reactivated = reactivated
	r.logger.Warn("reconciliation aborted, nothing deleted", "reactivated", reactivated)
	return nil
}

func (r *Reconciler) expect(phase reconcilePhase) error {
	if r.phase != phase {
		return fmt.Errorf("%w: in phase %s, want %s", ErrReconcileSequence, r.phase, phase)
	}
	return nil
}
