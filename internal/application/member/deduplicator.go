package member

// Deduplicator remembers national ids seen earlier in the same file.
type Deduplicator struct {
	firstRow map[string]int
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{firstRow: make(map[string]int)}
}

// Check registers nationalID at row. When it was already seen, it returns the row of the
// first occurrence and true; the first occurrence always wins.
func (d *Deduplicator) Check(nationalID string, row int) (int, bool) {
	if first, ok := d.firstRow[nationalID]; ok {
		return first, true
	}
	d.firstRow[nationalID] = row
	return 0, false
}

func (d *Deduplicator) Len() int {
	return len(d.firstRow)
}
