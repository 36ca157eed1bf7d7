package member

import (
	"fmt"
	"strings"
)

// PhoneNeedsUpdate marks a phone field that holds a number but no usable mobile.
const PhoneNeedsUpdate = "ACTUALIZAR"

const (
	DefaultCountryCode = "595"
	mobilePrefix       = '9'
	minLandlineDigits  = 6
	maxJoinedDigits    = 15
)

var phoneSeparators = strings.NewReplacer(
	"\r", " ", "\n", " ", "-", " ", ".", " ", ",", " ", ";", " ",
	"/", " ", "*", " ", "(", " ", ")", " ",
)

// PhoneNormalizer extracts the first mobile-shaped number from free text.
type PhoneNormalizer struct {
	countryCode string
}

func NewPhoneNormalizer(countryCode string) PhoneNormalizer {
	cc := digitsOnly(countryCode)
	if cc == "" {
		cc = DefaultCountryCode
	}
	return PhoneNormalizer{countryCode: cc}
}

// Normalize returns "+<cc> XXX XXX XXX", PhoneNeedsUpdate, or "".
func (p PhoneNormalizer) Normalize(raw string) string {
	text := strings.Join(strings.Fields(phoneSeparators.Replace(raw)), " ")
	if text == "" {
		return ""
	}

	tokens := strings.Split(text, " ")
	for _, token := range tokens {
		if formatted, ok := p.mobile(digitsOnly(token)); ok {
			return formatted
		}
	}

	// Numbers split by separators, e.g. "0981 123 456".
	for start := range tokens {
		joined := digitsOnly(tokens[start])
		for end := start + 1; end < len(tokens); end++ {
			joined += digitsOnly(tokens[end])
			if len(joined) > maxJoinedDigits {
				break
			}
			if formatted, ok := p.mobile(joined); ok {
				return formatted
			}
		}
	}

	if len(digitsOnly(text)) >= minLandlineDigits {
		return PhoneNeedsUpdate
	}
	return ""
}

func (p PhoneNormalizer) mobile(digits string) (string, bool) {
	digits = p.stripCountryCode(digits)
	switch {
	case len(digits) == 10 && digits[0] == '0' && digits[1] == mobilePrefix:
		digits = digits[1:]
	case len(digits) == 9 && digits[0] == mobilePrefix:
	default:
		return "", false
	}
	return fmt.Sprintf("+%s %s %s %s", p.countryCode, digits[0:3], digits[3:6], digits[6:9]), true
}

func (p PhoneNormalizer) stripCountryCode(digits string) string {
	for _, prefix := range []string{"00" + p.countryCode, p.countryCode} {
		if !strings.HasPrefix(digits, prefix) {
			continue
		}
		rest := digits[len(prefix):]
		if len(rest) == 9 || len(rest) == 10 {
			return rest
		}
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanNationalID strips every non-digit character.
func CleanNationalID(raw string) string {
	return digitsOnly(raw)
}
