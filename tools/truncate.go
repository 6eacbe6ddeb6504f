package tools

import (
	"fmt"
	"unicode/utf8"
)

// DefaultOutputLimit is the largest result, in characters, handed back to the model.
const DefaultOutputLimit = 50000

// Truncator caps tool output. Characters are counted as runes.
// The zero value uses DefaultOutputLimit and appends no marker.
type Truncator struct {
	Limit  int
	Marker bool
}

func (t Truncator) limit() int {
	if t.Limit <= 0 {
		return DefaultOutputLimit
	}
	return t.Limit
}

// Apply returns s cut to the limit.
func (t Truncator) Apply(s string) string {
	limit := t.limit()
	if len(s) <= limit {
		return s
	}
	total := utf8.RuneCountInString(s)
	if total <= limit {
		return s
	}

	n := 0
	for i := range s {
		if n == limit {
			cut := s[:i]
			if t.Marker {
				cut += fmt.Sprintf("\n... (output truncated, %d characters omitted)", total-limit)
			}
			return cut
		}
		n++
	}
	return s
}
