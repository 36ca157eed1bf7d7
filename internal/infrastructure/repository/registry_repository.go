package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammadpnp/padron-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

// hasDependents must stay in sync with the relations copied by SnapshotDependents.
const hasDependents = `(EXISTS (SELECT 1 FROM assignments a WHERE a.member_id = members.id)
 OR EXISTS (SELECT 1 FROM attendances t WHERE t.member_id = members.id))`

var dependentRelations = []struct {
	name  string
	table string
}{
	{name: "assignment", table: "assignments"},
	{name: "attendance", table: "attendances"},
}

type RegistryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRegistryRepository(db *gorm.DB) *RegistryRepository {
	return &RegistryRepository{db: db, now: time.Now}
}

func (r *RegistryRepository) KnownNationalIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&models.Member{}).Pluck("national_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load member national ids: %w", err)
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}

func (r *RegistryRepository) SnapshotDependents(ctx context.Context, jobID string) (int64, error) {
	var total int64
	takenAt := r.now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rel := range dependentRelations {
			res := tx.Exec(fmt.Sprintf(`
INSERT INTO dependent_snapshots (job_id, relation, record_id, member_id, national_id, taken_at)
SELECT ?, ?, d.id, d.member_id, m.national_id, ?
FROM %s d
JOIN members m ON m.id = d.member_id`, rel.table), jobID, rel.name, takenAt)
			if res.Error != nil {
				return fmt.Errorf("snapshot %s: %w", rel.table, res.Error)
			}
			total += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *RegistryRepository) MarkAllStale(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("in_registry = ?", true).
		Update("in_registry", false)
	if res.Error != nil {
		return 0, fmt.Errorf("mark members stale: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *RegistryRepository) CountStaleWithDependents(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("in_registry = ?", false).
		Where(hasDependents).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count stale members with dependents: %w", err)
	}
	return count, nil
}

const keepBatchSize = 500

// keepListRow is one row of the per-transaction reconcile_keep temp table.
type keepListRow struct {
	NationalID string
}

func (keepListRow) TableName() string {
	return "reconcile_keep"
}

// DeleteStaleWithoutDependents stages keep in a temp table, so any number of
// protected ids costs a constant number of bind parameters per statement.
func (r *RegistryRepository) DeleteStaleWithoutDependents(ctx context.Context, keep []string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("in_registry = ?", false).Where("NOT " + hasDependents)

		if len(keep) > 0 {
			if err := tx.Exec("CREATE TEMP TABLE reconcile_keep (national_id VARCHAR(20) NOT NULL)").Error; err != nil {
				return fmt.Errorf("create keep list: %w", err)
			}
			rows := make([]keepListRow, len(keep))
			for i, id := range keep {
				rows[i] = keepListRow{NationalID: id}
			}
			if err := tx.CreateInBatches(rows, keepBatchSize).Error; err != nil {
				return fmt.Errorf("stage keep list: %w", err)
			}
			query = query.Where("NOT EXISTS (SELECT 1 FROM reconcile_keep k WHERE k.national_id = members.national_id)")
		}

		res := query.Delete(&models.Member{})
		if res.Error != nil {
			return fmt.Errorf("delete stale members: %w", res.Error)
		}
		deleted = res.RowsAffected

		if len(keep) > 0 {
			if err := tx.Exec("DROP TABLE reconcile_keep").Error; err != nil {
				return fmt.Errorf("drop keep list: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *RegistryRepository) ReactivateWithDependents(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("in_registry = ?", false).
		Where(hasDependents).
		Update("in_registry", true)
	if res.Error != nil {
		return 0, fmt.Errorf("reactivate members: %w", res.Error)
	}
	return res.RowsAffected, nil
}
