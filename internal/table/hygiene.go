package table

import (
	"strings"
	"unicode"
)

// BOM is the byte-order mark some encoders prepend to text files
const BOM = "\ufeff"

// SuspiciousColumns lists column names that usually signal a malformed header
type SuspiciousColumns struct {
	Unnamed    []string `json:"unnamed_columns"`
	Duplicate  []string `json:"duplicate_columns"`
	Whitespace []string `json:"whitespace_columns"`
	BOM        []string `json:"bom_columns"`
}

// Empty reports whether no column was flagged
func (s SuspiciousColumns) Empty() bool {
	return len(s.Unnamed)+len(s.Duplicate)+len(s.Whitespace)+len(s.BOM) == 0
}

// StripColumnNames returns a copy of t with leading and trailing
// whitespace removed from every column name.
func StripColumnNames(t *Table) *Table {
	return t.renameWith(stripSpace)
}

// RemoveBOM returns a copy of t with every U+FEFF removed from the names.
func RemoveBOM(t *Table) *Table {
	return t.renameWith(func(name string) string {
		return strings.ReplaceAll(name, BOM, "")
	})
}

// CleanColumnNames removes BOM characters and then strips whitespace.
func CleanColumnNames(t *Table) *Table {
	return StripColumnNames(RemoveBOM(t))
}

// FindSuspiciousColumns flags unnamed, duplicate, whitespace-padded and
// BOM-carrying column names. The four checks are independent.
func FindSuspiciousColumns(t *Table) SuspiciousColumns {
	out := SuspiciousColumns{
		Unnamed:    []string{},
		Duplicate:  []string{},
		Whitespace: []string{},
		BOM:        []string{},
	}

	seen := make(map[string]struct{}, t.NCols())
	for _, name := range t.Names() {
		stripped := stripSpace(name)

		if strings.HasPrefix(strings.ToLower(name), "unnamed") {
			out.Unnamed = append(out.Unnamed, name)
		}
		// Padded and bare spellings of a name collide once loaded.
		if _, dup := seen[stripped]; dup {
			out.Duplicate = append(out.Duplicate, name)
		} else {
			seen[stripped] = struct{}{}
		}
		if name != stripped {
			out.Whitespace = append(out.Whitespace, name)
		}
		if strings.Contains(name, BOM) {
			out.BOM = append(out.BOM, name)
		}
	}
	return out
}

// stripSpace trims Unicode whitespace plus the ASCII information
// separators 0x1C-0x1F, which dataframe tooling also treats as blank.
func stripSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
	})
}
