package member

// EligibilityFlags are the five dues/standing indicators carried by every member.
type EligibilityFlags struct {
	Contribution bool
	Solidarity   bool
	Loans        bool
	Cards        bool
	Savings      bool
}

// FullVoting reports whether the member is in good standing on every indicator.
func (f EligibilityFlags) FullVoting() bool {
	return f.Contribution && f.Solidarity && f.Loans && f.Cards && f.Savings
}

// Record is one normalized spreadsheet row on its way to the member store.
type Record struct {
	RowNumber    int
	MemberNumber string
	NationalID   string
	FullName     string
	RawPhone     string
	Phone        string
	BranchID     *uint
	Flags        EligibilityFlags
}

type Member struct {
	ID           uint
	MemberNumber string
	NationalID   string
	FullName     string
	Phone        string
	BranchID     *uint
	Flags        EligibilityFlags
	InRegistry   bool
}

type Branch struct {
	ID   uint
	Code string
	Name string
	City *string
}
