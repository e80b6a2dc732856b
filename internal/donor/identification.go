package donor

import (
	"strings"

	"donorcrm/internal/domain"
)

// NormalizeIdentification formats an identification number according to its
// type: CNIC as 99999-9999999-9, NTN as 999999-9 and passports as nine
// digits. Other types are only trimmed.
func NormalizeIdentification(kind, number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", nil
	}
	switch kind {
	case domain.IdentificationCNIC:
		digits := onlyDigits(number)
		if len(digits) != 13 || len(digits) != countAllowed(number, "- ") {
			return "", domain.Invalid("cnic", "CNIC must have 13 digits in the form 99999-9999999-9")
		}
		return digits[:5] + "-" + digits[5:12] + "-" + digits[12:], nil
	case domain.IdentificationNTN:
		digits := onlyDigits(number)
		if len(digits) != 7 || len(digits) != countAllowed(number, "- ") {
			return "", domain.Invalid("cnic", "NTN must have 7 digits in the form 999999-9")
		}
		return digits[:6] + "-" + digits[6:], nil
	case domain.IdentificationPassport:
		digits := onlyDigits(number)
		if len(digits) != 9 || len(digits) != countAllowed(number, "- ") {
			return "", domain.Invalid("cnic", "passport number must have 9 digits")
		}
		return digits, nil
	default:
		return number, nil
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// countAllowed returns len(s) minus the separator runes, so callers can
// reject stray characters.
func countAllowed(s, separators string) int {
	n := 0
	for _, r := range s {
		if !strings.ContainsRune(separators, r) {
			n++
		}
	}
	return n
}
