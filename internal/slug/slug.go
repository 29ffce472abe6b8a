// Package slug maps display names to unique, URL-safe identifiers.
package slug

import (
	"fmt"
	"strings"
)

// CheckFunc reports whether a slug is already taken for one entity type.
// When it is, lastID must be the id of the most recently created
// conflicting record.
type CheckFunc func(slug string) (lastID int64, taken bool, err error)

// Make normalizes a display name into the slug alphabet [a-z0-9-]:
// lowercased, with every run of other characters collapsed into a
// single dash and no leading or trailing dashes.
func Make(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Generate produces a slug for name that check reports as free. On a
// conflict the id of the most recent conflicting record is appended and
// the candidate is rechecked. Ids are unique and strictly increasing,
// so each retry produces a previously unused candidate and the loop
// terminates within the number of existing records.
func Generate(name string, check CheckFunc) (string, error) {
	s := Make(name)
	for {
		id, taken, err := check(s)
		if err != nil {
			return "", err
		}
		if !taken {
			return s, nil
		}
		s = fmt.Sprintf("%s-%d", s, id)
	}
}
