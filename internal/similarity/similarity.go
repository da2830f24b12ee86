// Package similarity scores how alike two merchant names or addresses are.
package similarity

import (
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/price-tracker/internal/normalizer"
)

// Jaro-Winkler parameters, same as the ranking used for address candidates.
const (
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4
)

// Distance is the unit-cost Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Similarity returns an integer percentage in [0, 100].
//
// Identical raw inputs score 100 without normalization. Otherwise both sides
// are normalized; equal forms score 100, an empty form scores 0, and anything
// else scores round((maxLen - distance) / maxLen * 100).
func Similarity(a, b string) int {
	if a == b {
		return 100
	}

	na := normalizer.Normalize(a)
	nb := normalizer.Normalize(b)
	if na == nb {
		return 100
	}
	if len(na) == 0 || len(nb) == 0 {
		return 0
	}

	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}

	dist := Distance(na, nb)
	return roundHalfUp(float64(maxLen-dist) / float64(maxLen) * 100)
}

// JaroWinkler compares the normalized forms of a and b, returning [0, 1].
func JaroWinkler(a, b string) float64 {
	na := normalizer.Normalize(a)
	nb := normalizer.Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	return smetrics.JaroWinkler(na, nb, jwBoostThreshold, jwPrefixSize)
}

// Ranked is one candidate's position in the input slice and its closeness to the query.
type Ranked struct {
	Index int
	Score float64
}

// Rank orders candidates by Jaro-Winkler closeness to query, best first.
// Equal scores keep input order.
func Rank(query string, candidates []string) []Ranked {
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		ranked[i] = Ranked{Index: i, Score: JaroWinkler(query, c)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
