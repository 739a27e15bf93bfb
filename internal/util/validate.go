package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// validIDChars matches XO object IDs: UUIDs and opaque refs made of
// alphanumerics, hyphens, periods, colons and underscores.
var validIDChars = regexp.MustCompile(`^[a-zA-Z0-9._:\-]+$`)

// ValidateObjectID checks that an XO object ID is usable as a call
// parameter:
//   - Not empty
//   - No more than 128 characters
//   - Only alphanumeric characters, hyphens, periods, colons and underscores
func ValidateObjectID(id string) error {
	if id == "" {
		return fmt.Errorf("object id must not be empty")
	}
	if len(id) > 128 {
		return fmt.Errorf("object id must be at most 128 characters, got %d", len(id))
	}
	if !validIDChars.MatchString(id) {
		return fmt.Errorf("object id %q contains invalid characters", id)
	}
	return nil
}

// ParsePositiveInt parses s as an integer in [1, max]. A max of 0 means no
// upper bound.
func ParsePositiveInt(s string, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	if max > 0 && n > max {
		return 0, fmt.Errorf("must be at most %d, got %d", max, n)
	}
	return n, nil
}

// NormalizeKey lowercases and trims s for use as a lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
