// Package holding accumulates novel articles between batches and
// watches for breaking news that should preempt the normal batch
// cadence.
package holding

import (
	"sort"
	"strings"
	"sync"
	"time"

	"newsroom/config"
	"newsroom/types"
)

// Queue is single-writer (the sweep task calls Enqueue) and
// single-reader (the batch task calls Drain); the lock only guards the
// drain+clear pair and the enqueue path against each other.
type Queue struct {
	mu    sync.Mutex
	items []types.HoldingItem

	// Preempt receives a signal at most once per batch when a breaking
	// news item is enqueued. It is buffered so Enqueue never blocks on
	// a scheduler that hasn't read the previous signal yet.
	Preempt chan struct{}

	signaledThisBatch bool
}

// New returns an empty Queue with its preemption channel ready.
func New() *Queue {
	return &Queue{Preempt: make(chan struct{}, 1)}
}

// Enqueue appends items, aging each with the current time, and scans
// for breaking-news keywords to (at most once per batch) signal the
// scheduler.
func (q *Queue) Enqueue(items []types.Article) {
	if len(items) == 0 {
		return
	}

	now := time.Now()
	q.mu.Lock()
	for _, a := range items {
		q.items = append(q.items, types.HoldingItem{Article: a, EnqueuedAt: now})
		if isBreakingNews(a) {
			q.signalPreemptLocked()
		}
	}
	q.enforceBackpressureLocked()
	q.mu.Unlock()
}

func (q *Queue) signalPreemptLocked() {
	if q.signaledThisBatch {
		return
	}
	q.signaledThisBatch = true
	select {
	case q.Preempt <- struct{}{}:
	default:
	}
}

// Drain removes and returns every item currently queued, resetting the
// per-batch preemption flag so the next cycle can signal again.
func (q *Queue) Drain() []types.HoldingItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	q.signaledThisBatch = false
	return out
}

// Size reports the current queue length.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// ByCategory groups the currently-queued items by their article's
// category, without draining the queue.
func (q *Queue) ByCategory() map[types.Category][]types.HoldingItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make(map[types.Category][]types.HoldingItem)
	for _, item := range q.items {
		out[item.Article.Category] = append(out[item.Article.Category], item)
	}
	return out
}

// Clear discards all queued items without returning them.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// enforceBackpressureLocked drops the lowest-scored items once the
// queue exceeds the configured backpressure factor, bounding memory
// during a sustained burst of novel items.
func (q *Queue) enforceBackpressureLocked() {
	limit := config.HoldingQueueBackpressureFactor * config.DailyArticleLimit
	if len(q.items) <= limit {
		return
	}

	sort.SliceStable(q.items, func(i, j int) bool {
		return backpressureScore(q.items[i]) > backpressureScore(q.items[j])
	})
	q.items = q.items[:limit]
}

// backpressureScore favors longer, fresher content; it exists purely
// to pick which items to drop under sustained overload, distinct from
// the dedup/quota scoring function.
func backpressureScore(item types.HoldingItem) float64 {
	ageHours := time.Since(item.EnqueuedAt).Hours()
	contentLen := float64(len(item.Article.Content))
	return contentLen/1000 - ageHours
}

func isBreakingNews(a types.Article) bool {
	haystack := strings.ToLower(a.Title + " " + a.Content)
	for _, kw := range config.BreakingNewsKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
