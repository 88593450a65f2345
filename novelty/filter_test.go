package novelty

import (
	"errors"
	"testing"

	"newsroom/types"
)

type fakeLookup struct {
	urlExists     bool
	urlErr        error
	candidates    []types.Article
	candidatesErr error
}

func (f fakeLookup) URLExists(url string) (bool, error) { return f.urlExists, f.urlErr }
func (f fakeLookup) TitleCandidates(titleWindow string, limit int) ([]types.Article, error) {
	return f.candidates, f.candidatesErr
}

func TestIsNewRejectsExactURLMatch(t *testing.T) {
	lookup := fakeLookup{urlExists: true}
	if IsNew(lookup, types.Article{URL: "https://example.com/a", Title: "Anything"}) {
		t.Fatalf("expected exact URL match to be rejected as not new")
	}
}

func TestIsNewAdmitsOnURLLookupFailure(t *testing.T) {
	lookup := fakeLookup{urlErr: errors.New("boom")}
	if !IsNew(lookup, types.Article{URL: "https://example.com/a", Title: "Anything"}) {
		t.Fatalf("expected admit-on-failure bias for URL lookup error")
	}
}

func TestIsNewAdmitsOnCandidateLookupFailure(t *testing.T) {
	lookup := fakeLookup{candidatesErr: errors.New("boom")}
	if !IsNew(lookup, types.Article{URL: "https://example.com/a", Title: "Anything"}) {
		t.Fatalf("expected admit-on-failure bias for candidate lookup error")
	}
}

func TestIsNewRejectsFuzzyTitleMatchAboveThreshold(t *testing.T) {
	lookup := fakeLookup{
		candidates: []types.Article{{Title: "Federal Reserve raises interest rates sharply today"}},
	}
	// New title's words are a subset of the stored title's words, so
	// |W_old|/|W_new| > 1 >= threshold.
	candidate := types.Article{URL: "https://example.com/b", Title: "Federal Reserve raises interest rates"}
	if IsNew(lookup, candidate) {
		t.Fatalf("expected fuzzy title match to be rejected as not new")
	}
}

func TestIsNewAdmitsDissimilarTitle(t *testing.T) {
	lookup := fakeLookup{
		candidates: []types.Article{{Title: "Federal Reserve"}},
	}
	// |W_old|/|W_new| = 2/5 = 0.4, below the threshold. The ratio compares
	// word counts only, so a stored title with as many words as the
	// candidate would reject it regardless of overlap.
	candidate := types.Article{URL: "https://example.com/c", Title: "Local bakery wins regional award"}
	if !IsNew(lookup, candidate) {
		t.Fatalf("expected dissimilar title to be admitted")
	}
}

func TestFuzzyRatioIsAsymmetricCardinality(t *testing.T) {
	oldWords := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	newWords := map[string]struct{}{"a": {}}

	// Deliberately not Jaccard: with zero overlap outside the shared
	// term the ratio can exceed 1, unlike an intersection-based measure.
	if got := fuzzyRatio(oldWords, newWords); got != 3.0 {
		t.Fatalf("fuzzyRatio() = %v, want 3.0 (|W_old|/|W_new|)", got)
	}
}

func TestFuzzyRatioEmptyNewWords(t *testing.T) {
	if got := fuzzyRatio(map[string]struct{}{"a": {}}, map[string]struct{}{}); got != 0 {
		t.Fatalf("fuzzyRatio() with empty new words = %v, want 0", got)
	}
}
