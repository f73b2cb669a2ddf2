// Package spell scores how likely one identifier is a typo of another.
package spell

import (
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// MaxIndex is the score of two names equal up to case.
const MaxIndex = 10

var fold = cases.Fold()

// Index returns a closeness score in [0, MaxIndex]: the share of the longer
// name that survives the edit distance between the case-folded names,
// in tenths. Names that differ only in case score MaxIndex.
func Index(name, candidate string) int {
	if name == "" || candidate == "" {
		return 0
	}
	a, b := fold.String(name), fold.String(candidate)
	if a == b {
		return MaxIndex
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	dist := levenshtein.ComputeDistance(a, b)
	if dist >= longest {
		return 0
	}
	return (longest - dist) * MaxIndex / longest
}

// Misspelled applies the acceptance thresholds: scores below 3 never
// count, single letters never match, three-letter names need 5 or a call
// with arguments, longer names need 6, or 5 with arguments.
func Misspelled(name string, score, args int) bool {
	if score < 3 {
		return false
	}
	switch n := len([]rune(name)); {
	case n < 2:
		return false
	case n == 2:
		return true
	case n == 3:
		return score >= 5 || args > 0
	default:
		return score >= 6 || (score >= 5 && args > 0)
	}
}
