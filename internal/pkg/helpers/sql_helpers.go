package helpers

import (
	"strconv"
	"strings"
)

// NullableString returns nil for blank input so that optional columns are
// stored as NULL instead of empty text.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Placeholders returns "($n,$n+1,...)" groups for a multi-row VALUES clause,
// numbering from start. A non-empty cast such as "::text" is appended to
// every placeholder.
func Placeholders(rows, cols, start int, cast string) string {
	var b strings.Builder
	b.Grow(rows * cols * (6 + len(cast)))
	n := start
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			b.WriteString(cast)
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}
