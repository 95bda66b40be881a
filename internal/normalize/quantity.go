package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var quantityPrefix = regexp.MustCompile(`^(\d+)[x×]\s*(.+)$`)

// ExtractQuantity splits "3x Domestos" into 3 and "Domestos". Text without a
// count prefix is returned trimmed with a quantity of 1.
func ExtractQuantity(text string) (int, string) {
	trimmed := strings.TrimSpace(text)
	m := quantityPrefix.FindStringSubmatch(trimmed)
	if m == nil {
		return 1, trimmed
	}
	qty, err := strconv.Atoi(m[1])
	if err != nil {
		return 1, trimmed
	}
	return qty, m[2]
}

// SplitNote breaks a free-text note into item mentions on commas and line
// breaks. Empty fragments are dropped.
func SplitNote(note string) []string {
	fields := strings.FieldsFunc(note, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
