package quota

import (
	"fmt"
	"testing"
	"time"

	"newsroom/config"
	"newsroom/types"
)

func articlesInCategory(n int, cat types.Category) []types.Article {
	out := make([]types.Article, n)
	for i := 0; i < n; i++ {
		out[i] = types.Article{
			ID:          fmt.Sprintf("%s-%d", cat, i),
			Category:    cat,
			PublishedAt: time.Now(),
			Content:     fmt.Sprintf("article body number %d with some words in it", i),
		}
	}
	return out
}

func TestDistributeCapsAtMaxArticlesPerCategory(t *testing.T) {
	unique := articlesInCategory(config.MaxArticlesPerCategory+10, types.CategoryUSNational)

	result := Distribute(unique, CategoryCounts{}, time.Now())
	if len(result.Selected) != config.MaxArticlesPerCategory {
		t.Fatalf("expected %d selected articles, got %d", config.MaxArticlesPerCategory, len(result.Selected))
	}

	found := false
	for _, cat := range result.CategoriesAtLimit {
		if cat == types.CategoryUSNational {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected US_NATIONAL to be reported at limit")
	}
}

func TestDistributeRespectsAlreadyTodayRemaining(t *testing.T) {
	unique := articlesInCategory(20, types.CategoryUSNational)
	alreadyToday := CategoryCounts{types.CategoryUSNational: 45} // target 50, remaining 5

	result := Distribute(unique, alreadyToday, time.Now())
	if len(result.Selected) != 5 {
		t.Fatalf("expected 5 selected (remaining quota), got %d", len(result.Selected))
	}
}

func TestDistributeNeverExceedsDailyLimitAcrossCategories(t *testing.T) {
	var unique []types.Article
	for _, cat := range types.Categories {
		unique = append(unique, articlesInCategory(config.MaxArticlesPerCategory+5, cat)...)
	}

	result := Distribute(unique, CategoryCounts{}, time.Now())
	if len(result.Selected) > config.DailyArticleLimit {
		t.Fatalf("expected selected <= daily limit %d, got %d", config.DailyArticleLimit, len(result.Selected))
	}
}

func TestDistributeRanksHigherScoredArticlesFirstWithinCategory(t *testing.T) {
	now := time.Now()
	low := types.Article{ID: "low", Category: types.CategoryUSNational, PublishedAt: now.Add(-20 * time.Hour)}
	high := types.Article{ID: "high", Category: types.CategoryUSNational, SourceID: "federal-reserve", PublishedAt: now}

	result := Distribute([]types.Article{low, high}, CategoryCounts{}, now)
	if len(result.Selected) != 2 {
		t.Fatalf("expected both articles selected, got %d", len(result.Selected))
	}
	if result.Selected[0].ID != "high" {
		t.Fatalf("expected higher-scored article first, got %s", result.Selected[0].ID)
	}
}

func TestRoundRobinTruncateDropsFromTailAcrossCategories(t *testing.T) {
	byCategory := map[types.Category][]types.Article{
		types.CategoryUSNational:    articlesInCategory(3, types.CategoryUSNational),
		types.CategoryInternational: articlesInCategory(3, types.CategoryInternational),
	}

	out := roundRobinTruncate(byCategory, 4, time.Now())
	if len(out) != 4 {
		t.Fatalf("expected truncation down to 4, got %d", len(out))
	}
}
