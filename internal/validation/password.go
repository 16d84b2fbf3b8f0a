package validation

import "regexp"

var (
	specialChars = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// HasSpecialChar checks if a string contains at least one special character
func HasSpecialChar(s string) bool {
	return specialChars.MatchString(s)
}
