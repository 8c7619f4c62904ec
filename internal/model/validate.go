package model

import "regexp"

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	contactPattern  = regexp.MustCompile(`^\d{10}$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidContactNumber reports whether s is exactly 10 decimal digits.
func IsValidContactNumber(s string) bool {
	return contactPattern.MatchString(s)
}

// IsValidPassword reports whether s is at least 8 characters from the
// allowed set and contains at least one letter and one digit. The letter
// and digit checks are explicit scans since RE2 has no lookahead.
func IsValidPassword(s string) bool {
	if !passwordCharset.MatchString(s) {
		return false
	}
	var hasLetter, hasDigit bool
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
