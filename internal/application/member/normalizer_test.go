package member_test

import (
	"context"
	"errors"
	"testing"

	app "github.com/mohammadpnp/padron-import/internal/application/member"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
)

type fixedBranches struct {
	id   uint
	seen []string
}

func (f *fixedBranches) Resolve(ctx context.Context, raw string) *uint {
	f.seen = append(f.seen, raw)
	if raw == "" {
		return nil
	}
	id := f.id
	return &id
}

func newNormalizer(t *testing.T, header ...string) (*app.RowNormalizer, *fixedBranches) {
	t.Helper()

	mapping, err := domain.ResolveColumns(header)
	if err != nil {
		t.Fatalf("resolve columns: %v", err)
	}
	branches := &fixedBranches{id: 7}
	return app.NewRowNormalizer(mapping, domain.NewPhoneNormalizer("595"), branches), branches
}

func TestRowNormalizerAcceptsRow(t *testing.T) {
	t.Parallel()

	n, branches := newNormalizer(t, "Nro. Socio", "C.I.", "Nombre y Apellido", "Celular", "Sucursal", "Solidaridad", "Tarjeta")
	record, err := n.Normalize(context.Background(), 4, []string{"A-12", "3.456.789", "  maria   lopez ", "0971-222-333", "02", "no", "x"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if record.RowNumber != 4 || record.MemberNumber != "A-12" || record.NationalID != "3456789" {
		t.Fatalf("unexpected identity: %+v", record)
	}
	if record.FullName != "MARIA LOPEZ" {
		t.Fatalf("unexpected name: %q", record.FullName)
	}
	if record.Phone != "+595 971 222 333" || record.RawPhone != "0971-222-333" {
		t.Fatalf("unexpected phone: %q from %q", record.Phone, record.RawPhone)
	}
	if record.BranchID == nil || *record.BranchID != 7 || branches.seen[0] != "02" {
		t.Fatalf("unexpected branch: %v %v", record.BranchID, branches.seen)
	}
	want := domain.EligibilityFlags{Contribution: true, Solidarity: false, Loans: true, Cards: true, Savings: true}
	if record.Flags != want {
		t.Fatalf("unexpected flags: %+v", record.Flags)
	}
}

func TestRowNormalizerMemberNumberFallsBackToNationalID(t *testing.T) {
	t.Parallel()

	n, _ := newNormalizer(t, "CI", "NOMBRE")
	record, err := n.Normalize(context.Background(), 2, []string{"123", "Juan"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record.MemberNumber != "123" {
		t.Fatalf("expected member number to fall back to national id, got %q", record.MemberNumber)
	}
	if record.Phone != "" || record.BranchID != nil {
		t.Fatalf("expected unmapped columns to stay empty: %+v", record)
	}
}

func TestRowNormalizerRejections(t *testing.T) {
	t.Parallel()

	n, _ := newNormalizer(t, "CI", "NOMBRE")

	tests := []struct {
		name string
		row  []string
		want error
	}{
		{name: "missing national id", row: []string{"-", "Juan"}, want: domain.ErrMissingNationalID},
		{name: "missing name", row: []string{"123", "   "}, want: domain.ErrMissingFullName},
		{name: "short row", row: []string{"123"}, want: domain.ErrMissingFullName},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := n.Normalize(context.Background(), 2, tt.row)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := n.Normalize(context.Background(), 2, []string{"", ""}); err == nil {
		t.Fatal("expected blank row to be rejected")
	}
}
