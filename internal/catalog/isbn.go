package catalog

import (
	"errors"
	"strings"
)

// ErrInvalidISBN is returned when a candidate string cannot be normalized
// into a 10 or 13 character ISBN.
var ErrInvalidISBN = errors.New("invalid isbn")

// NormalizeISBN strips hyphens and whitespace from a candidate ISBN and
// validates the remaining form: 13 digits, or 9 digits followed by a digit
// or the check character X. The result is the canonical key for books.
func NormalizeISBN(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		case r == '-' || r == ' ':
			// separator, skip
		default:
			return "", ErrInvalidISBN
		}
	}

	isbn := b.String()
	switch len(isbn) {
	case 10:
		// check character X is only valid in the last position
		if strings.ContainsRune(isbn[:9], 'X') {
			return "", ErrInvalidISBN
		}
	case 13:
		if strings.ContainsRune(isbn, 'X') {
			return "", ErrInvalidISBN
		}
	default:
		return "", ErrInvalidISBN
	}

	return isbn, nil
}
