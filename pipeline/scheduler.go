// Package pipeline wires the fetch sweep and batch cadences together:
// the Poller/Scheduler component from spec.md §4.C.
package pipeline

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"newsroom/breaker"
	"newsroom/config"
	"newsroom/dedup"
	"newsroom/feed"
	"newsroom/holding"
	"newsroom/kafkaevents"
	"newsroom/llm"
	"newsroom/novelty"
	"newsroom/store"
	"newsroom/types"
)

// Status is the read-only snapshot the control package's /internal/status
// route serves and the operator TUI polls (spec.md §6's status() operation).
type Status struct {
	IsProcessing    bool
	QueueSize       int
	LastProcessedAt time.Time
	Circuit         map[string]types.CircuitState
}

// LimitsSnapshot is spec.md §6's daily_limits_snapshot() operation.
type LimitsSnapshot struct {
	AlreadyToday map[types.Category]int
	Remaining    map[types.Category]int
}

// Scheduler owns the sweep ticker, the batch cron, the holding queue's
// preemption channel, and every collaborator constructed once at
// startup and injected here rather than reached for via a singleton.
type Scheduler struct {
	sources []types.Source
	cfg     config.Config

	breaker  *breaker.Registry
	queue    *holding.Queue
	st       store.Store
	rewriter *llm.Rewriter
	seen     *dedup.SeenFilter
	events   *kafkaevents.Producer
	archive  *store.Archive

	batchMu         sync.Mutex
	inFlight        bool
	lastResult      types.ProcessingResult
	lastProcessedAt time.Time
}

// New constructs a Scheduler with its full dependency graph.
func New(
	sources []types.Source,
	cfg config.Config,
	breakerReg *breaker.Registry,
	queue *holding.Queue,
	st store.Store,
	rewriter *llm.Rewriter,
	seen *dedup.SeenFilter,
	events *kafkaevents.Producer,
	archive *store.Archive,
) *Scheduler {
	return &Scheduler{
		sources:  sources,
		cfg:      cfg,
		breaker:  breakerReg,
		queue:    queue,
		st:       st,
		rewriter: rewriter,
		seen:     seen,
		events:   events,
		archive:  archive,
	}
}

// Run blocks until ctx is cancelled, driving the sweep ticker, the
// batch cron, and the holding queue's preemption channel.
func (s *Scheduler) Run(ctx context.Context) {
	c := cron.New()
	if _, err := c.AddFunc("@every 30m", func() { s.runBatchIfIdle(ctx) }); err != nil {
		log.Printf("pipeline: failed to schedule batch cron: %v", err)
	}
	c.Start()
	defer c.Stop()

	select {
	case <-time.After(time.Duration(config.SweepStartupDelayS) * time.Second):
	case <-ctx.Done():
		return
	}
	s.sweepOnce(ctx)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		case <-s.queue.Preempt:
			s.runBatchIfIdle(ctx)
		}
	}
}

// sweepOnce fans out to every active source, bounded by
// config.MaxSweepWorkers, forwarding novel items to the holding queue.
func (s *Scheduler) sweepOnce(ctx context.Context) {
	sem := make(chan struct{}, min(len(s.sources), config.MaxSweepWorkers))
	var wg sync.WaitGroup

	for _, src := range s.sources {
		if !src.Active {
			continue
		}
		if !s.breaker.Admit(src.ID) {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(source types.Source) {
			defer wg.Done()
			defer func() { <-sem }()
			s.sweepSource(ctx, source)
		}(src)
	}
	wg.Wait()
}

func (s *Scheduler) sweepSource(ctx context.Context, source types.Source) {
	page, err := feed.Fetch(ctx, source)
	if err != nil {
		s.breaker.RecordFailure(source.ID)
		_ = s.st.UpdateSourceProbe(source.ID, time.Now(), err.Error())
		return
	}
	s.breaker.RecordSuccess(source.ID)
	_ = s.st.UpdateSourceProbe(source.ID, time.Now(), "")

	now := time.Now()
	articles := make([]*types.Article, 0, len(page.Items))
	for _, item := range page.Items {
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}
		a := &types.Article{
			ID:          types.ArticleID(source.ID, guid, item.Link),
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.Link,
			SourceID:    source.ID,
			Category:    source.Category,
			PublishedAt: item.PublishedAt,
			CapturedAt:  now,
			Tags:        deriveTags(item.Title, item.Description),
		}
		articles = append(articles, a)
	}

	feed.EnrichContent(articles)

	if s.archive != nil {
		flat := make([]types.Article, len(articles))
		for i, a := range articles {
			flat[i] = *a
		}
		if err := s.archive.ArchiveSweep(ctx, source.ID, flat); err != nil {
			log.Printf("pipeline: archive sweep for %s: %v", source.ID, err)
		}
	}

	novel := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		if !novelty.IsNew(s.st, *a) {
			continue
		}
		novel = append(novel, *a)
	}
	s.queue.Enqueue(novel)
}

func deriveTags(title, description string) []string {
	haystack := strings.ToLower(title + " " + description)
	var tags []string
	seen := make(map[string]bool)
	for keyword, tag := range config.TagDictionary {
		if strings.Contains(haystack, keyword) && !seen[tag] {
			tags = append(tags, tag)
			seen[tag] = true
		}
	}
	return tags
}

// runBatchIfIdle triggers a batch unless one is already in flight, in
// which case the tick (or preemption signal) is skipped rather than
// enqueued (spec.md §4.C).
func (s *Scheduler) runBatchIfIdle(ctx context.Context) types.ProcessingResult {
	s.batchMu.Lock()
	if s.inFlight {
		s.batchMu.Unlock()
		return s.lastResult
	}
	s.inFlight = true
	s.batchMu.Unlock()

	result := s.runBatch(ctx)

	s.batchMu.Lock()
	s.inFlight = false
	s.lastResult = result
	s.lastProcessedAt = time.Now()
	s.batchMu.Unlock()

	return result
}

// TriggerManualBatch is the external control operation with identical
// semantics to an automatic batch tick.
func (s *Scheduler) TriggerManualBatch(ctx context.Context) types.ProcessingResult {
	return s.runBatchIfIdle(ctx)
}

// ResetCircuitBreaker is the administrative override control
// operation.
func (s *Scheduler) ResetCircuitBreaker(sourceID string) {
	s.breaker.Reset(sourceID)
}

// Status reports the scheduler's current state for the control surface.
func (s *Scheduler) Status() Status {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return Status{
		IsProcessing:    s.inFlight,
		QueueSize:       s.queue.Size(),
		LastProcessedAt: s.lastProcessedAt,
		Circuit:         s.breaker.Snapshot(),
	}
}

// DailyLimitsSnapshot reports totals and per-category remaining quota.
func (s *Scheduler) DailyLimitsSnapshot() (LimitsSnapshot, error) {
	counts, err := s.st.CategoryCountsToday(time.Now())
	if err != nil {
		return LimitsSnapshot{}, err
	}

	remaining := make(map[types.Category]int)
	for _, cat := range types.Categories {
		target := int(float64(config.DailyArticleLimit) * config.CategorySplit[cat])
		r := target - counts[cat]
		if r < 0 {
			r = 0
		}
		if r > config.MaxArticlesPerCategory {
			r = config.MaxArticlesPerCategory
		}
		remaining[cat] = r
	}
	return LimitsSnapshot{AlreadyToday: counts, Remaining: remaining}, nil
}
