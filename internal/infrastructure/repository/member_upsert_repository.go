package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
)

var stagedMemberColumns = []string{
	"job_id",
	"row_index",
	"member_number",
	"national_id",
	"full_name",
	"phone",
	"branch_id",
	"flag_contribution",
	"flag_solidarity",
	"flag_loans",
	"flag_cards",
	"flag_savings",
}

// MemberUpsertRepository writes member batches through the stg_members COPY target.
type MemberUpsertRepository struct {
	pool *pgxpool.Pool
}

func NewMemberUpsertRepository(pool *pgxpool.Pool) *MemberUpsertRepository {
	return &MemberUpsertRepository{pool: pool}
}

func (r *MemberUpsertRepository) UpsertBatch(ctx context.Context, jobID string, records []domain.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []any{
			jobID,
			int64(i),
			rec.MemberNumber,
			rec.NationalID,
			rec.FullName,
			rec.Phone,
			nullableID(rec.BranchID),
			rec.Flags.Contribution,
			rec.Flags.Solidarity,
			rec.Flags.Loans,
			rec.Flags.Cards,
			rec.Flags.Savings,
		})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"stg_members"}, stagedMemberColumns, pgx.CopyFromRows(rows)); err != nil {
		return 0, fmt.Errorf("copy members staging: %w", err)
	}

	affected, err := upsertStagedMembers(ctx, tx, jobID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM stg_members WHERE job_id = $1", jobID); err != nil {
		return 0, fmt.Errorf("cleanup stg_members: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit member batch: %w", err)
	}
	return affected, nil
}

// upsertStagedMembers keys on national_id and always flips in_registry back on.
func upsertStagedMembers(ctx context.Context, tx pgx.Tx, jobID string) (int64, error) {
	tag, err := tx.Exec(ctx, `
WITH staged AS (
    SELECT DISTINCT ON (national_id)
      member_number,
      national_id,
      full_name,
      phone,
      branch_id,
      flag_contribution,
      flag_solidarity,
      flag_loans,
      flag_cards,
      flag_savings
    FROM stg_members
    WHERE job_id = $1
    ORDER BY national_id, row_index DESC
)
INSERT INTO members (
    member_number, national_id, full_name, phone, branch_id,
    flag_contribution, flag_solidarity, flag_loans, flag_cards, flag_savings,
    in_registry, last_import_job_id, created_at, updated_at
)
SELECT
    member_number, national_id, full_name, phone, branch_id,
    flag_contribution, flag_solidarity, flag_loans, flag_cards, flag_savings,
    TRUE, $1, NOW(), NOW()
FROM staged
ON CONFLICT (national_id) DO UPDATE
  SET member_number = EXCLUDED.member_number,
      full_name = EXCLUDED.full_name,
      phone = EXCLUDED.phone,
      branch_id = EXCLUDED.branch_id,
      flag_contribution = EXCLUDED.flag_contribution,
      flag_solidarity = EXCLUDED.flag_solidarity,
      flag_loans = EXCLUDED.flag_loans,
      flag_cards = EXCLUDED.flag_cards,
      flag_savings = EXCLUDED.flag_savings,
      in_registry = TRUE,
      last_import_job_id = EXCLUDED.last_import_job_id,
      updated_at = NOW()
`, jobID)
	if err != nil {
		return 0, fmt.Errorf("upsert members by national_id: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullableID(id *uint) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}
