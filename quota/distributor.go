// Package quota enforces the daily total and per-category caps and
// ranks unique articles for selection into a batch.
package quota

import (
	"sort"
	"time"

	"newsroom/config"
	"newsroom/dedup"
	"newsroom/types"
)

// CategoryCounts is the already_today count per category, as reported
// by the store for the current day window.
type CategoryCounts map[types.Category]int

// Result is the outcome of Distribute: the selected articles plus
// which categories, if any, hit their effective cap and dropped
// candidates as a result.
type Result struct {
	Selected          []types.Article
	CategoriesAtLimit []types.Category
}

// Distribute implements spec.md §4.G: per-category remaining/effective
// cap, in-category ranking by the shared score function, then
// category-round-robin truncation of the union down to
// DailyArticleLimit.
func Distribute(unique []types.Article, alreadyToday CategoryCounts, now time.Time) Result {
	byCategory := make(map[types.Category][]types.Article)
	for _, a := range unique {
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}

	selectedByCategory := make(map[types.Category][]types.Article)
	var atLimit []types.Category

	for _, cat := range types.Categories {
		split := config.CategorySplit[cat]
		target := int(float64(config.DailyArticleLimit) * split)
		remaining := target - alreadyToday[cat]
		if remaining < 0 {
			remaining = 0
		}
		effectiveCap := remaining
		if effectiveCap > config.MaxArticlesPerCategory {
			effectiveCap = config.MaxArticlesPerCategory
		}

		candidates := byCategory[cat]
		sort.SliceStable(candidates, func(i, j int) bool {
			return dedup.Score(candidates[i], now) > dedup.Score(candidates[j], now)
		})

		if len(candidates) > effectiveCap {
			atLimit = append(atLimit, cat)
			candidates = candidates[:effectiveCap]
		}
		selectedByCategory[cat] = candidates
	}

	selected := roundRobinTruncate(selectedByCategory, config.DailyArticleLimit, now)
	return Result{Selected: selected, CategoriesAtLimit: atLimit}
}

// roundRobinTruncate flattens the per-category selections, and if the
// union still exceeds limit, iterates categories round-robin, each time
// dropping the last (lowest-ranked) item of that category's list.
// Scores are not compared across categories.
func roundRobinTruncate(byCategory map[types.Category][]types.Article, limit int, now time.Time) []types.Article {
	total := 0
	for _, cat := range types.Categories {
		total += len(byCategory[cat])
	}
	if total <= limit {
		return flatten(byCategory)
	}

	excess := total - limit
	for excess > 0 {
		for _, cat := range types.Categories {
			list := byCategory[cat]
			if len(list) == 0 {
				continue
			}
			byCategory[cat] = list[:len(list)-1]
			excess--
			if excess == 0 {
				break
			}
		}
	}
	return flatten(byCategory)
}

func flatten(byCategory map[types.Category][]types.Article) []types.Article {
	var out []types.Article
	for _, cat := range types.Categories {
		out = append(out, byCategory[cat]...)
	}
	return out
}
