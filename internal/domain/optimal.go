package domain

import "strings"

// Marker substrings scanned for in candidate text, Spanish and English.
// "recomendad" covers both "recomendada" and "recomendado".
var (
	recommendedMarkers = []string{"recomendad", "recommended", "preferred", "preferente"}
	favorableMarkers   = []string{"favorable", "especial", "special"}
)

func containsAnyFold(s string, markers []string) bool {
	s = strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// HasRecommendedMarker reports whether a candidate's company name or tariff
// text carries a recommended/preferred marker
func (c *ProposalCandidate) HasRecommendedMarker() bool {
	return containsAnyFold(c.Company, recommendedMarkers) ||
		containsAnyFold(c.Tariff, recommendedMarkers)
}

// HasFavorableMarker reports whether a candidate's tariff text carries a
// favorable/special marker
func (c *ProposalCandidate) HasFavorableMarker() bool {
	return containsAnyFold(c.Tariff, favorableMarkers)
}

// OptimalCandidateIndex folds the candidate list left to right and returns
// the index of the best candidate. The accumulator starts at candidate 0.
// For each later candidate, first match wins:
//
//  1. A recommended marker makes the candidate best outright, so the last
//     marked candidate wins over everything seen before it.
//  2. A strictly lower budget beats the best so far.
//  3. On exactly equal budgets, a favorable marker beats a best so far
//     without one.
//
// The returned index is advisory for display; acceptance still requires the
// requester to pick a candidate explicitly. Returns -1 for an empty list.
func OptimalCandidateIndex(candidates []ProposalCandidate) int {
	if len(candidates) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		c := &candidates[i]
		switch {
		case c.HasRecommendedMarker():
			best = i
		case c.Budget < candidates[best].Budget:
			best = i
		case c.Budget == candidates[best].Budget &&
			c.HasFavorableMarker() && !candidates[best].HasFavorableMarker():
			best = i
		}
	}
	return best
}
