package member

import (
	"context"
	"strings"

	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
)

type branchLookup interface {
	Resolve(ctx context.Context, raw string) *uint
}

// RowNormalizer turns raw spreadsheet rows into member records.
type RowNormalizer struct {
	mapping  domain.ColumnMapping
	phones   domain.PhoneNormalizer
	branches branchLookup
}

func NewRowNormalizer(mapping domain.ColumnMapping, phones domain.PhoneNormalizer, branches branchLookup) *RowNormalizer {
	return &RowNormalizer{mapping: mapping, phones: phones, branches: branches}
}

// Normalize returns errBlankRow, domain.ErrMissingNationalID or domain.ErrMissingFullName for rejected rows.
func (n *RowNormalizer) Normalize(ctx context.Context, rowNumber int, row []string) (domain.Record, error) {
	rawID, _ := n.mapping.Cell(row, domain.RoleNationalID)
	nationalID := domain.CleanNationalID(rawID)
	nameCell, _ := n.mapping.Cell(row, domain.RoleFullName)
	fullName := normalizeName(nameCell)

	switch {
	case nationalID == "" && fullName == "":
		return domain.Record{}, errBlankRow
	case nationalID == "":
		return domain.Record{RowNumber: rowNumber, FullName: fullName}, domain.ErrMissingNationalID
	case fullName == "":
		return domain.Record{RowNumber: rowNumber, NationalID: nationalID}, domain.ErrMissingFullName
	}

	record := domain.Record{
		RowNumber:    rowNumber,
		MemberNumber: nationalID,
		NationalID:   nationalID,
		FullName:     fullName,
	}
	if number, ok := n.mapping.Cell(row, domain.RoleMemberNumber); ok && number != "" {
		record.MemberNumber = number
	}
	if phone, ok := n.mapping.Cell(row, domain.RolePhone); ok {
		record.RawPhone = phone
		record.Phone = n.phones.Normalize(phone)
	}
	if branch, ok := n.mapping.Cell(row, domain.RoleBranch); ok && n.branches != nil {
		record.BranchID = n.branches.Resolve(ctx, branch)
	}

	record.Flags = domain.EligibilityFlags{
		Contribution: n.flag(row, domain.RoleFlagContribution),
		Solidarity:   n.flag(row, domain.RoleFlagSolidarity),
		Loans:        n.flag(row, domain.RoleFlagLoans),
		Cards:        n.flag(row, domain.RoleFlagCards),
		Savings:      n.flag(row, domain.RoleFlagSavings),
	}
	return record, nil
}

func (n *RowNormalizer) flag(row []string, role domain.Role) bool {
	value, ok := n.mapping.Cell(row, role)
	if !ok {
		return n.mapping.FlagDefault(role)
	}
	return domain.ParseFlag(value)
}

func normalizeName(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), " "))
}
