package dedup

import (
	"testing"
	"time"

	"newsroom/types"
)

func TestRunCollapsesExactDuplicates(t *testing.T) {
	a := types.Article{ID: "a1", Title: "Fed Raises Rates", URL: "https://example.com/fed", Content: "The Federal Reserve raised interest rates on Wednesday."}
	b := a
	b.ID = "a2"

	result := Run([]types.Article{a, b}, nil)
	if len(result.Unique) != 1 {
		t.Fatalf("expected exact duplicates to collapse to 1 unique article, got %d", len(result.Unique))
	}
	if len(result.Clusters) != 1 || len(result.Clusters[0].Duplicates) != 1 {
		t.Fatalf("expected a single cluster recording the dropped duplicate")
	}
}

func TestRunMergesSimilarArticlesPreferringOfficialSource(t *testing.T) {
	now := time.Now()
	official := types.Article{
		ID: "off-1", SourceID: "federal-reserve",
		Title:   "Federal Reserve raises interest rates by quarter point",
		Content: "The Federal Reserve announced a quarter point rate increase today citing inflation concerns across the economy.",
		URL:     "https://federalreserve.gov/press/2026/rate-hike",
		PublishedAt: now.Add(-1 * time.Hour),
	}
	wire := types.Article{
		ID: "wire-1", SourceID: "some-wire",
		Title:   "Fed raises interest rates by a quarter point",
		Content: "The Federal Reserve announced a quarter point rate increase today citing inflation concerns across the economy.",
		URL:     "https://somewire.com/news/rate-hike",
		PublishedAt: now,
	}

	result := Run([]types.Article{wire, official}, nil)
	if len(result.Unique) != 1 {
		t.Fatalf("expected similar articles to merge into 1, got %d", len(result.Unique))
	}
	if result.Unique[0].ID != "off-1" {
		t.Fatalf("expected the official source to win the cluster, got %s", result.Unique[0].ID)
	}
}

func TestRunKeepsDissimilarArticlesSeparate(t *testing.T) {
	a := types.Article{ID: "a1", Title: "Federal Reserve raises interest rates", URL: "https://example.com/a", Content: "monetary policy news about the central bank"}
	b := types.Article{ID: "b1", Title: "Local bakery wins regional pastry award", URL: "https://example.com/b", Content: "a small business story about a bakery"}

	result := Run([]types.Article{a, b}, nil)
	if len(result.Unique) != 2 {
		t.Fatalf("expected dissimilar articles to remain separate, got %d unique", len(result.Unique))
	}
}

func TestRunExcludesCandidatesAlreadyStoredToday(t *testing.T) {
	existing := types.Article{
		ID: "existing-1", SourceID: "federal-reserve",
		Title:   "Federal Reserve raises interest rates by quarter point",
		Content: "The Federal Reserve announced a quarter point rate increase today citing inflation concerns across the economy.",
		URL:     "https://federalreserve.gov/press/2026/rate-hike",
	}
	fresh := types.Article{
		ID: "wire-1", SourceID: "some-wire",
		Title:   "Fed raises interest rates by a quarter point",
		Content: "The Federal Reserve announced a quarter point rate increase today citing inflation concerns across the economy.",
		URL:     "https://somewire.com/news/rate-hike",
	}

	result := Run([]types.Article{fresh}, []types.Article{existing})
	if len(result.Unique) != 0 {
		t.Fatalf("expected a candidate matching an already-stored article to be excluded, got %+v", result.Unique)
	}
}

func TestRunAdmitsCandidateNotCoveredByAlreadyStored(t *testing.T) {
	existing := types.Article{ID: "existing-1", Title: "Local bakery wins regional pastry award", URL: "https://example.com/bakery", Content: "a small business story about a bakery"}
	fresh := types.Article{ID: "fresh-1", Title: "Federal Reserve raises interest rates", URL: "https://example.com/fed", Content: "monetary policy news about the central bank"}

	result := Run([]types.Article{fresh}, []types.Article{existing})
	if len(result.Unique) != 1 || result.Unique[0].ID != "fresh-1" {
		t.Fatalf("expected the dissimilar fresh candidate to be admitted, got %+v", result.Unique)
	}
}

func TestSimilarityRenormalizesOnMissingFields(t *testing.T) {
	a := types.Article{Title: "same title here", URL: "https://example.com/x"}
	b := types.Article{Title: "same title here", URL: "https://example.com/x"}
	// No content on either side: weight should renormalize over
	// title+URL only, not silently divide by the full 1.0.
	sim := Similarity(a, b)
	if sim < 0.99 {
		t.Fatalf("expected near-1.0 similarity when title and URL fully match, got %v", sim)
	}
}

func TestScorePrefersOfficialAndRecentContent(t *testing.T) {
	now := time.Now()
	official := types.Article{SourceID: "un-news", Content: string(make([]byte, 2000)), PublishedAt: now}
	other := types.Article{SourceID: "blog", Content: string(make([]byte, 2000)), PublishedAt: now.Add(-10 * time.Hour)}

	if Score(official, now) <= Score(other, now) {
		t.Fatalf("expected official, recent article to score higher")
	}
}

func TestScoreContentComponentIsCapped(t *testing.T) {
	now := time.Now()
	huge := types.Article{Content: string(make([]byte, 10000)), PublishedAt: now.Add(-100 * time.Hour)}
	// content component alone should never exceed 2.0; recency is 0 far
	// in the past, so total score should be <= 2.0.
	if got := Score(huge, now); got > 2.0001 {
		t.Fatalf("Score() = %v, expected content contribution capped at 2.0", got)
	}
}
