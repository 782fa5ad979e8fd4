// Package namedist implements name normalization, fuzzy similarity, and the
// ranking order used everywhere candidates are produced: exact match first,
// then prefix match, then similarity descending, then shortest key.
package namedist

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// MatchThreshold is the minimum similarity for a fuzzy name match.
var MatchThreshold = 0.7

// simParams lowers the prefix-bonus threshold so that names sharing a long
// common prefix (MPRester vs MPResult) clear MatchThreshold despite several
// trailing edits.
var simParams = levenshtein.NewParams().BonusThreshold(0.6)

// Normalize lowercases a name and strips all underscores, so that
// get_structure and GetStructure compare equal.
func Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// Similarity returns a score in [0,1] between the normalized forms of a and
// b: edit distance with a common-prefix bonus.
func Similarity(a, b string) float64 {
	return levenshtein.Match(Normalize(a), Normalize(b), simParams)
}

// Matches reports whether name matches target: exact normalized equality,
// normalized substring containment, or similarity above MatchThreshold.
func Matches(name, target string) bool {
	if name == "" || target == "" {
		return false
	}
	n, t := Normalize(name), Normalize(target)
	return n == t || strings.Contains(n, t) || Similarity(name, target) > MatchThreshold
}

// Rank stably sorts items in place by the four-key contract against target.
// key yields the name being matched; tiebreak yields the string whose length
// breaks similarity ties (the name itself for name lists, the import path for
// candidate lists).
func Rank[T any](items []T, target string, key, tiebreak func(T) string) {
	t := Normalize(target)
	sort.SliceStable(items, func(i, j int) bool {
		ni, nj := Normalize(key(items[i])), Normalize(key(items[j]))

		exactI, exactJ := ni == t, nj == t
		if exactI != exactJ {
			return exactI
		}
		prefixI, prefixJ := strings.HasPrefix(ni, t), strings.HasPrefix(nj, t)
		if prefixI != prefixJ {
			return prefixI
		}
		simI, simJ := Similarity(key(items[i]), target), Similarity(key(items[j]), target)
		if simI != simJ {
			return simI > simJ
		}
		return len(tiebreak(items[i])) < len(tiebreak(items[j]))
	})
}

// RankNames returns names sorted by the four-key contract against target.
// The input slice is not modified.
func RankNames(names []string, target string) []string {
	out := make([]string, len(names))
	copy(out, names)
	Rank(out, target, func(s string) string { return s }, func(s string) string { return s })
	return out
}
