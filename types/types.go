// Package types holds the data model shared by every stage of the
// ingestion -> dedup -> brief pipeline: sources, articles, briefs, the
// in-memory circuit breaker state, holding-queue items, and the
// per-batch processing log.
package types

import (
	"fmt"
	"hash/crc32"
	"strings"
	"time"
)

// Category is one of the three fixed topical buckets the pipeline
// distributes articles and briefs into.
type Category string

const (
	CategoryUSNational    Category = "US_NATIONAL"
	CategoryInternational Category = "INTERNATIONAL"
	CategoryFinanceMacro  Category = "FINANCE_MACRO"
)

// Categories lists every valid category in a stable order, used wherever
// the quota distributor or config needs to iterate categories
// deterministically.
var Categories = []Category{CategoryUSNational, CategoryInternational, CategoryFinanceMacro}

// Source is a single syndicated feed the fetcher polls on a fixed
// cadence. Category is immutable once a source exists; URL is unique.
type Source struct {
	ID            string
	Name          string
	URL           string
	Category      Category
	Active        bool
	LastCheckedAt time.Time
	LastError     string
}

// Article is a captured, deduplicated feed item. ID is derived
// deterministically from (SourceID, GUID, URL) so a replayed feed
// produces the same row again rather than a duplicate.
type Article struct {
	ID          string
	Title       string
	Description string
	Content     string
	URL         string
	SourceID    string
	Category    Category
	PublishedAt time.Time
	CapturedAt  time.Time
	Tags        []string
	BriefMade   bool

	// Author and ImageURL are optional display metadata populated by the
	// content extractor; they never participate in dedup, quota, or
	// rewrite decisions.
	Author   string
	ImageURL string
}

// FastKeyParts exposes the (url, title) pair used by the dedup
// package's cross-batch bloom accelerator.
func (a Article) FastKeyParts() (url, title string) { return a.URL, a.Title }

// ArticleID implements spec's fixed id scheme: a 32-bit crc32 (IEEE) fold
// of each of (sourceID, guid, url), concatenated. Equivalent items from
// a replayed feed collapse onto the same id regardless of which run
// produced them.
func ArticleID(sourceID, guid, url string) string {
	return fmt.Sprintf("%08x%08x%08x",
		crc32.ChecksumIEEE([]byte(sourceID)),
		crc32.ChecksumIEEE([]byte(guid)),
		crc32.ChecksumIEEE([]byte(url)),
	)
}

// BriefStatus is the editorial lifecycle state of a Brief. The core
// only ever writes the initial status (operator-configured, default
// BriefStatusPending); every other transition is driven externally.
type BriefStatus string

const (
	BriefStatusPending     BriefStatus = "pending"
	BriefStatusApproved    BriefStatus = "approved"
	BriefStatusRejected    BriefStatus = "rejected"
	BriefStatusPublished   BriefStatus = "published"
	BriefStatusUnpublished BriefStatus = "unpublished"
	BriefStatusArchived    BriefStatus = "archived"
)

// BriefMetadata captures the accounting the LLM pipeline produces
// alongside a Brief's text.
type BriefMetadata struct {
	ModelID        string
	PromptVersion  string
	Tokens         int
	CostUSD        float64
	ProcessingMS   int64
	Subjectivity   float64
	RevisionCount  int
}

// Brief is the neutral, gated rewrite of one or more source articles.
type Brief struct {
	ID          string
	Headline    string
	Body        string
	SourceURLs  []string
	Category    Category
	PublishedAt time.Time
	Tags        []string
	Status      BriefStatus
	Meta        BriefMetadata
}

// BriefID builds the `<category>-<slug3>-<epoch_ms>` identity from the
// headline's first three alphanumeric words and a capture timestamp.
func BriefID(category Category, headline string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d", category, slug3(headline), at.UnixMilli())
}

func slug3(headline string) string {
	fields := strings.Fields(headline)
	var words []string
	for _, f := range fields {
		var b strings.Builder
		for _, r := range f {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			words = append(words, strings.ToLower(b.String()))
		}
		if len(words) == 3 {
			break
		}
	}
	if len(words) == 0 {
		return "untitled"
	}
	return strings.Join(words, "-")
}

// CircuitState is the per-source, in-memory admission state tracked by
// the breaker registry. It is never persisted.
type CircuitState struct {
	Failures      int
	LastFailureAt time.Time
	Open          bool
}

// HoldingItem wraps an article with the time it entered the holding
// queue, used only to age items for backpressure scoring.
type HoldingItem struct {
	Article    Article
	EnqueuedAt time.Time
}

// ProcessingLog is the append-only outcome record of one batch.
type ProcessingLog struct {
	Success          bool
	ArticlesProcessed int
	BriefsGenerated  int
	Errors           []string
	ProcessingMS     int64
	Tokens           int
	CostUSD          float64
	ModelID          string
	PromptVersion    string
	Timestamp        time.Time
}

// ProcessingResult is the in-process return value of a batch run; it
// is always populated, even when every stage fails, so the scheduler
// never has to reach for a thrown-exception-shaped error.
type ProcessingResult struct {
	Success           bool
	ArticlesProcessed int
	BriefsGenerated   int
	Errors            []string
	CategoriesAtLimit []Category
	ProcessingMS      int64
	Tokens            int
	CostUSD           float64
	Log               ProcessingLog
}

// ToLog converts a ProcessingResult into the append-only record shape.
func (r ProcessingResult) ToLog(modelID, promptVersion string, at time.Time) ProcessingLog {
	return ProcessingLog{
		Success:           r.Success,
		ArticlesProcessed: r.ArticlesProcessed,
		BriefsGenerated:   r.BriefsGenerated,
		Errors:            r.Errors,
		ProcessingMS:      r.ProcessingMS,
		Tokens:            r.Tokens,
		CostUSD:           r.CostUSD,
		ModelID:           modelID,
		PromptVersion:     promptVersion,
		Timestamp:         at,
	}
}
