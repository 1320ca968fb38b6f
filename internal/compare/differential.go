package compare

import (
	"fmt"

	"github.com/cory-johannsen/hoopstats/internal/stats"
)

// Differential returns a − b for every field at full precision. Percentages
// are differenced as given, never recomputed from makes and attempts.
//
// Postcondition: positive fields mean a exceeds b.
func Differential(a, b stats.StatBlock) stats.StatBlock {
	var out stats.StatBlock
	for _, f := range stats.Fields {
		f.Set(&out, f.Get(a)-f.Get(b))
	}
	return out
}

// Precision returns the number of decimal places a field is displayed with:
// one for counting stats, three for percentages.
func Precision(f stats.Field) int {
	if f.Kind == stats.Percentage {
		return 3
	}
	return 1
}

// FormatValue renders a field value at its display precision.
func FormatValue(f stats.Field, v float64) string {
	return fmt.Sprintf("%.*f", Precision(f), v)
}

// FormatDelta renders a differential at its display precision with an
// explicit sign. Values that round to zero render unsigned.
func FormatDelta(f stats.Field, v float64) string {
	s := fmt.Sprintf("%+.*f", Precision(f), v)
	if s[1:] == FormatValue(f, 0) {
		return s[1:]
	}
	return s
}
