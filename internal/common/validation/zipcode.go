package validation

import "regexp"

var zipcodePattern = regexp.MustCompile(`^\d{5}$`)

// IsZipcode reports whether s is a well-formed 5-digit US ZIP code.
func IsZipcode(s string) bool {
	return zipcodePattern.MatchString(s)
}
