package config

import (
	"regexp"

	"newsroom/types"
)

// Quota constants (spec.md §4.G).
const (
	DailyArticleLimit     = 150
	MaxArticlesPerCategory = 50
	MinSources            = 1
)

// CategorySplit is the target share of DailyArticleLimit given to each
// category before per-category caps and remaining-today are applied.
var CategorySplit = map[types.Category]float64{
	types.CategoryUSNational:    1.0 / 3.0,
	types.CategoryInternational: 1.0 / 3.0,
	types.CategoryFinanceMacro:  1.0 / 3.0,
}

// Dedup constants (spec.md §4.F).
const DedupSimilarityThreshold = 0.82

// OfficialSources is the fixed allow-list used only for best-of-cluster
// scoring inside the deduplicator and quota ranking; narrower than the
// primary-domain allow-list used by the gate.
var OfficialSources = map[string]bool{
	"white-house":    true,
	"state-dept":     true,
	"defense-dept":   true,
	"federal-reserve": true,
	"un-news":        true,
}

// Circuit breaker constants (spec.md §4.B).
const (
	BreakerFailureThreshold = 5
	BreakerOpenWindowMS     = 300_000
)

// Scheduler cadences (spec.md §4.C).
const (
	SweepInterval       = 30 // seconds
	BatchInterval       = 30 // minutes
	SweepStartupDelayS  = 5
	MaxSweepWorkers     = 8
	MaxArticlesPerFeed  = 50
)

// Novelty filter (spec.md §4.D).
const (
	NoveltyFuzzyThreshold  = 0.8
	NoveltyMaxCandidates   = 5
	NoveltyTitleWindowSize = 100
)

// Holding queue (spec.md §4.E, §5).
const HoldingQueueBackpressureFactor = 10 // multiplied by DailyArticleLimit

// BreakingNewsKeywords is the fixed keyword list scanned against title
// and content, case-insensitively, on enqueue.
var BreakingNewsKeywords = []string{
	"breaking", "urgent", "alert", "crisis", "emergency", "attack", "disaster",
	"election", "resignation", "impeachment", "war", "conflict", "coup",
	"market crash", "economic crisis", "natural disaster",
}

// BiasLexicon is the fixed lexicon the Brief Rewriter's bias scan
// matches case-insensitively before requesting a neutral revision.
var BiasLexicon = []string{
	"brutal", "shocking", "stunning", "devastating", "savage", "terrorist",
	"regime", "strongman", "dictator", "rogue", "aggressive", "unprovoked",
	"innocent", "victims", "heroes", "extremist", "radical", "militant",
	"thugs", "cronies",
}

// TagDictionary maps a keyword found in an article's title+description to
// the tag recorded against the article (spec.md §3).
var TagDictionary = map[string]string{
	"election":    "elections",
	"vote":        "elections",
	"congress":    "congress",
	"senate":      "congress",
	"house":       "congress",
	"supreme court": "judiciary",
	"federal reserve": "monetary-policy",
	"interest rate": "monetary-policy",
	"inflation":   "economy",
	"gdp":         "economy",
	"unemployment": "economy",
	"trade":       "trade",
	"tariff":      "trade",
	"war":         "conflict",
	"military":    "defense",
	"nato":        "defense",
	"climate":     "climate",
	"pandemic":    "public-health",
	"vaccine":     "public-health",
	"immigration": "immigration",
	"tax":         "fiscal-policy",
	"budget":      "fiscal-policy",
}

// PrimaryDomainPatterns are the compiled regexes behind the gate's soft
// "missing primary source" check (spec.md §6).
var PrimaryDomainPatterns = compilePrimaryDomainPatterns()

func compilePrimaryDomainPatterns() []*regexp.Regexp {
	raw := []string{
		`\.gov(\.|$)`,
		`\.gob(\.|$)`,
		`\.go\.[a-z]{2}$`,
		`\.edu`,
		`un\.org`, `icj-cij\.org`, `icc-cpi\.int`, `who\.int`, `worldbank\.org`,
		`imf\.org`, `europa\.eu`, `ec\.europa\.eu`,
		`data\.gov`, `congress\.gov`, `legislation\.gov\.uk`, `justice\.gc\.ca`,
		`parliament\.`, `court`,
		`reuters`, `ap\.org`, `bbc\.(com|co\.uk)`, `npr\.org`, `pbs\.org`,
		`aljazeera\.com`, `dw\.com`, `france24\.com`, `cnn\.com`, `nytimes\.com`,
		`washingtonpost\.com`, `wsj\.com`, `bloomberg\.com`, `ft\.com`, `economist\.com`,
		`arxiv\.org`, `researchgate\.net`, `scholar\.google\.com`,
	}
	out := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// BriefRewriterSystemPrompt establishes the fact-checking rubric used
// for every draft call (spec.md §6).
const BriefRewriterSystemPrompt = `You are a fact-checking news desk editor. Parse the claims in the
supplied article. Cite any law by name and year. Place events on a
five-to-ten-year timeline where relevant. Cite at least one source,
including a primary document when available. Note any material
economic interests of the parties involved. Produce a neutral body
within the requested word band. Avoid loaded labels unless legally
designated (e.g. a court-designated "terrorist organization").

Respond using exactly these five sections, in order, with literal
delimiters on their own lines:

==HEADLINE==
<headline>
==BRIEF==
<body>
==CONTEXT==
<context, or None>
==SOURCES==
<one URL per line>
==SIDE-CAR==
<JSON object>`
