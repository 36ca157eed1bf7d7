package member_test

import (
	"testing"

	app "github.com/mohammadpnp/padron-import/internal/application/member"
)

func TestDeduplicatorFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	d := app.NewDeduplicator()
	if _, dup := d.Check("1234567", 2); dup {
		t.Fatal("first occurrence reported as duplicate")
	}
	if _, dup := d.Check("7654321", 3); dup {
		t.Fatal("distinct id reported as duplicate")
	}
	first, dup := d.Check("1234567", 9)
	if !dup || first != 2 {
		t.Fatalf("expected duplicate of row 2, got first=%d dup=%v", first, dup)
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 distinct ids, got %d", d.Len())
	}
}
