package pipeline

import (
	"context"
	"log"
	"time"

	"newsroom/dedup"
	"newsroom/quota"
	"newsroom/store"
	"newsroom/types"
)

const batchDeadline = 10 * time.Minute

// runBatch executes spec.md §4's batch stage: drain -> dedup ->
// distribute -> persist articles -> rewrite -> persist briefs -> log.
// The returned ProcessingResult is always populated, even when every
// stage fails, so no exception-shaped failure escapes the batch
// boundary (spec.md §7).
func (s *Scheduler) runBatch(ctx context.Context) types.ProcessingResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, batchDeadline)
	defer cancel()

	result := types.ProcessingResult{Success: true}

	drained := s.queue.Drain()
	if len(drained) == 0 {
		result.ProcessingMS = time.Since(start).Milliseconds()
		s.finishBatch(ctx, result)
		return result
	}

	candidates := make([]types.Article, 0, len(drained))
	for _, item := range drained {
		if s.seen != nil && s.seen.Seen(item.Article) {
			// A bloom hit is only a hint: the article is skipped only when
			// the store confirms its URL, so a false positive costs one lookup.
			if stored, err := s.st.URLExists(item.Article.URL); err == nil && stored {
				continue
			}
		}
		candidates = append(candidates, item.Article)
	}

	now := time.Now()
	alreadyStored, err := s.st.ArticlesInWindow(store.LocalMidnight(now), now)
	if err != nil {
		result.Errors = append(result.Errors, "articles_in_window: "+err.Error())
	}

	dedupResult := dedup.Run(candidates, alreadyStored)
	for _, a := range dedupResult.Unique {
		if s.seen != nil {
			s.seen.MarkSeen(a)
		}
	}

	counts, err := s.st.CategoryCountsToday(now)
	if err != nil {
		result.Errors = append(result.Errors, "category_counts: "+err.Error())
		counts = map[types.Category]int{}
	}

	quotaResult := quota.Distribute(dedupResult.Unique, quota.CategoryCounts(counts), now)
	result.CategoriesAtLimit = quotaResult.CategoriesAtLimit

	if errs := s.st.UpsertArticles(quotaResult.Selected); len(errs) > 0 {
		for _, e := range errs {
			result.Errors = append(result.Errors, "upsert_articles: "+e.Error())
		}
	}
	result.ArticlesProcessed = len(quotaResult.Selected)

	var briefs []types.Brief
	for _, article := range quotaResult.Selected {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "batch cancelled before rewriting all selected articles")
			break
		}

		brief := s.rewriter.Rewrite(ctx, article)
		briefs = append(briefs, brief)
		result.Tokens += brief.Meta.Tokens
		result.CostUSD += brief.Meta.CostUSD
	}

	if errs := s.st.UpsertBriefs(briefs); len(errs) > 0 {
		for _, e := range errs {
			result.Errors = append(result.Errors, "upsert_briefs: "+e.Error())
		}
	}
	result.BriefsGenerated = len(briefs)

	if len(result.Errors) > 0 {
		result.Success = false
	}
	result.ProcessingMS = time.Since(start).Milliseconds()

	s.finishBatch(ctx, result)
	return result
}

// finishBatch emits the processing log and archive record, both
// best-effort: neither failure propagates into the batch's result
// (spec.md §4.J).
func (s *Scheduler) finishBatch(ctx context.Context, result types.ProcessingResult) {
	logRecord := result.ToLog("", "v1", time.Now())
	if err := s.st.AppendProcessingLog(logRecord); err != nil {
		log.Printf("pipeline: append processing log: %v", err)
	}
	s.events.PublishProcessingLog(logRecord)
	if s.archive != nil {
		if err := s.archive.ArchiveBatch(ctx, result); err != nil {
			log.Printf("pipeline: archive batch: %v", err)
		}
	}
}
