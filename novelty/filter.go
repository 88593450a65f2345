// Package novelty decides whether a freshly fetched article has been
// seen before, so only genuinely new items reach the holding queue.
package novelty

import (
	"strings"

	"newsroom/config"
	"newsroom/types"
)

// Lookup is the narrow slice of the store the novelty filter needs.
// It depends on a capability interface rather than a concrete store
// implementation so tests can substitute an in-memory fake.
type Lookup interface {
	URLExists(url string) (bool, error)
	TitleCandidates(titleWindow string, limit int) ([]types.Article, error)
}

// IsNew applies spec.md §4.D: exact URL match first, then an
// asymmetric word-ratio fuzzy title match over a bounded candidate
// set. A lookup failure biases toward admitting the candidate, since
// a false duplicate is worse than an occasional repeat.
func IsNew(lookup Lookup, candidate types.Article) bool {
	exists, err := lookup.URLExists(candidate.URL)
	if err != nil {
		return true
	}
	if exists {
		return false
	}

	window := candidate.Title
	if len(window) > config.NoveltyTitleWindowSize {
		window = window[:config.NoveltyTitleWindowSize]
	}

	stored, err := lookup.TitleCandidates(window, config.NoveltyMaxCandidates)
	if err != nil {
		return true
	}

	newWords := wordSet(candidate.Title)
	for _, old := range stored {
		oldWords := wordSet(old.Title)
		if fuzzyRatio(oldWords, newWords) >= config.NoveltyFuzzyThreshold {
			return false
		}
	}
	return true
}

// fuzzyRatio is the deliberately-asymmetric |W_old| / |W_new| ratio
// spec.md §9 Open Question 1 preserves for novelty admission: a raw
// cardinality ratio (can exceed 1), not a Jaccard overlap — kept as-is
// since admission here is one-sided and the candidates already share
// the title-window substring match that selected them.
func fuzzyRatio(oldWords, newWords map[string]struct{}) float64 {
	if len(newWords) == 0 {
		return 0
	}
	return float64(len(oldWords)) / float64(len(newWords))
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}
