package member

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Role is the canonical meaning of a spreadsheet column.
type Role string

const (
	RoleMemberNumber     Role = "member_number"
	RoleNationalID       Role = "national_id"
	RoleFullName         Role = "full_name"
	RolePhone            Role = "phone"
	RoleBranch           Role = "branch"
	RoleFlagContribution Role = "flag_contribution"
	RoleFlagSolidarity   Role = "flag_solidarity"
	RoleFlagLoans        Role = "flag_loans"
	RoleFlagCards        Role = "flag_cards"
	RoleFlagSavings      Role = "flag_savings"
)

var FlagRoles = []Role{
	RoleFlagContribution,
	RoleFlagSolidarity,
	RoleFlagLoans,
	RoleFlagCards,
	RoleFlagSavings,
}

var criticalRoles = []Role{RoleNationalID, RoleFullName}

type columnRule struct {
	role  Role
	match func(header string) bool
}

func exact(role Role, synonyms ...string) columnRule {
	set := make(map[string]struct{}, len(synonyms))
	for _, s := range synonyms {
		set[s] = struct{}{}
	}
	return columnRule{role: role, match: func(header string) bool {
		_, ok := set[header]
		return ok
	}}
}

func containing(role Role, fragments ...string) columnRule {
	return columnRule{role: role, match: func(header string) bool {
		for _, f := range fragments {
			if strings.Contains(header, f) {
				return true
			}
		}
		return false
	}}
}

// decoyHeaders carry document data that is not the member's national id.
var decoyHeaders = map[string]struct{}{
	"DOC AGR": {},
}

// Rule passes run in order; all exact synonyms are tried before any substring rule.
var columnRulePasses = [][]columnRule{
	{
		exact(RoleMemberNumber, "NRO SOCIO", "NUMERO SOCIO", "NUM SOCIO", "COD SOCIO", "CODIGO SOCIO", "SOCIO", "NRO"),
		exact(RoleNationalID, "CI", "C I", "CEDULA", "NRO CEDULA", "CEDULA DE IDENTIDAD", "DOCUMENTO", "NRO DOCUMENTO", "DOC NUM", "DOC"),
		exact(RoleFullName, "NOMBRE", "NOMBRES", "NOMBRE COMPLETO", "NOMBRE Y APELLIDO", "NOMBRES Y APELLIDOS", "APELLIDO Y NOMBRE", "APELLIDOS Y NOMBRES", "RAZON SOCIAL"),
		exact(RolePhone, "TELEFONO", "TEL", "CELULAR", "CEL", "MOVIL"),
		exact(RoleBranch, "SUCURSAL", "SUC", "FILIAL", "AGENCIA"),
	},
	// Flag fragments are distinctive and go first: "APORTE SOCIO" is a flag, not the member number.
	{
		containing(RoleFlagContribution, "APOR"),
		containing(RoleFlagSolidarity, "SOLID"),
		containing(RoleFlagLoans, "CRED", "PREST"),
		containing(RoleFlagCards, "TARJ"),
		containing(RoleFlagSavings, "AHORR"),
		containing(RoleNationalID, "CEDULA", "DOC"),
		containing(RoleFullName, "NOMBRE", "APELLIDO"),
		containing(RoleMemberNumber, "SOCIO"),
		containing(RolePhone, "TEL", "CEL"),
		containing(RoleBranch, "SUCUR", "FILIAL"),
	},
}

// ColumnMapping maps roles to zero-based column indexes. It is immutable once built.
type ColumnMapping struct {
	index map[Role]int
}

// ResolveColumns maps header cells to roles. National id and full name are required.
func ResolveColumns(header []string) (ColumnMapping, error) {
	mapping := ColumnMapping{index: make(map[Role]int)}
	claimed := make(map[int]struct{})

	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = NormalizeHeader(cell)
	}

	for _, rules := range columnRulePasses {
		for col, h := range normalized {
			if h == "" {
				continue
			}
			if _, decoy := decoyHeaders[h]; decoy {
				continue
			}
			if _, done := claimed[col]; done {
				continue
			}
			for _, rule := range rules {
				if !rule.match(h) {
					continue
				}
				if _, taken := mapping.index[rule.role]; taken {
					continue
				}
				mapping.index[rule.role] = col
				claimed[col] = struct{}{}
				break
			}
		}
	}

	var missing []string
	for _, role := range criticalRoles {
		if _, ok := mapping.index[role]; !ok {
			missing = append(missing, string(role))
		}
	}
	if len(missing) > 0 {
		return ColumnMapping{}, fmt.Errorf("%w: %s", ErrMissingCriticalColumns, strings.Join(missing, ", "))
	}

	return mapping, nil
}

// Index returns the column bound to role.
func (m ColumnMapping) Index(role Role) (int, bool) {
	col, ok := m.index[role]
	return col, ok
}

// Cell returns the trimmed cell for role. ok is false when the role has no column;
// a mapped column past the end of a short row reads as "".
func (m ColumnMapping) Cell(row []string, role Role) (value string, ok bool) {
	col, ok := m.index[role]
	if !ok {
		return "", false
	}
	if col >= len(row) {
		return "", true
	}
	return strings.TrimSpace(row[col]), true
}

// FlagDefault is the value assumed for an eligibility flag whose column is absent.
func (m ColumnMapping) FlagDefault(role Role) bool {
	return true
}

// Roles lists the resolved roles in a stable order, for logging.
func (m ColumnMapping) Roles() []string {
	out := make([]string, 0, len(m.index))
	for role, col := range m.index {
		out = append(out, fmt.Sprintf("%s=%d", role, col))
	}
	sort.Strings(out)
	return out
}

// NormalizeHeader trims, strips accents and punctuation noise, collapses spaces and upper-cases.
func NormalizeHeader(cell string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), cell)
	if err != nil {
		folded = cell
	}
	folded = strings.Map(func(r rune) rune {
		switch r {
		case '_', '.', ':', '\n', '\r', '\t', '°', 'º':
			return ' '
		}
		return r
	}, folded)
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}
