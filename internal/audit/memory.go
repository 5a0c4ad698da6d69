package audit

import (
	"unicode/utf8"

	"github.com/go-gota/gota/series"

	"csvaudit/internal/table"
)

// Deep footprint model. Fixed-width columns cost their element width.
// Text columns hold one reference per cell plus a boxed string object,
// sized like a compact Python str; missing text cells hold a boxed float.
const (
	rangeIndexBytes = 132
	fixedWidthBytes = 8
	boolBytes       = 1
	referenceBytes  = 8
	boxedFloatBytes = 24
	asciiStrHeader  = 49
	latin1StrHeader = 73
	ucs2StrHeader   = 74
	ucs4StrHeader   = 76
)

// MemoryUsage estimates the in-memory size of t in bytes, text payloads
// included.
func MemoryUsage(t *table.Table) int64 {
	total := int64(rangeIndexBytes)
	rows := t.NRows()

	for i := 0; i < t.NCols(); i++ {
		switch t.Type(i) {
		case series.Int, series.Float:
			total += int64(rows) * fixedWidthBytes
		case series.Bool:
			total += int64(rows) * boolBytes
		default:
			col := t.Column(i)
			for r := 0; r < rows; r++ {
				e := col.Elem(r)
				total += referenceBytes
				if table.IsMissing(e) {
					total += boxedFloatBytes
					continue
				}
				total += stringObjectBytes(e.String())
			}
		}
	}
	return total
}

// stringObjectBytes sizes a string by its widest code point
func stringObjectBytes(s string) int64 {
	n := int64(utf8.RuneCountInString(s))
	var maxRune rune
	for _, r := range s {
		if r > maxRune {
			maxRune = r
		}
	}

	switch {
	case maxRune < 0x80:
		return asciiStrHeader + n
	case maxRune < 0x100:
		return latin1StrHeader + n
	case maxRune < 0x10000:
		return ucs2StrHeader + 2*n
	default:
		return ucs4StrHeader + 4*n
	}
}
