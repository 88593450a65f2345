package llm

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"newsroom/config"
	"newsroom/types"
)

const (
	llmTimeout     = 60 * time.Second
	promptVersion  = "v1"
	maxExpandTries = 3
)

// fillerParagraph is the documented, deterministic text appended when
// an article still falls short of MinWords after every expansion
// attempt (spec.md §4.H.3).
const fillerParagraph = "Further developments on this story will be reported as official " +
	"statements, filings, or data releases become available. Readers are " +
	"encouraged to consult the primary sources listed above for the full " +
	"record of this event."

var wordPattern = regexp.MustCompile(`\b\w+\b`)

func wordCount(s string) int { return len(wordPattern.FindAllString(s, -1)) }

// Rewriter runs the draft -> bias-scan -> length-loop -> gate -> build
// pipeline from spec.md §4.H.
type Rewriter struct {
	Client  Client
	Band    config.WordBand
	ModelID string

	InitialStatus types.BriefStatus

	CostRateInPerMillion  float64
	CostRateOutPerMillion float64
}

// Rewrite turns a single article into a Brief. On LLM failure it never
// returns a plain error to the caller — instead it falls back to a
// deterministically constructed brief per spec.md §7, so a batch never
// aborts on a provider outage.
func (r *Rewriter) Rewrite(ctx context.Context, article types.Article) types.Brief {
	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	d, usage, err := r.draft(ctx, article)
	if err != nil {
		return r.fallbackBrief(article)
	}

	revisions := 0
	if containsBiasedTerm(d.Body) {
		if revised, revUsage, err := r.reviseForBias(ctx, article, d); err == nil {
			d = revised
			usage = mergeUsage(usage, revUsage)
			revisions++
		}
	}

	for attempt := 0; attempt < maxExpandTries && wordCount(d.Body) < r.Band.MinWords; attempt++ {
		expanded, expUsage, err := r.expand(ctx, article, d)
		if err != nil {
			break
		}
		d = expanded
		usage = mergeUsage(usage, expUsage)
	}
	if wordCount(d.Body) < r.Band.MinWords {
		d.Body = strings.TrimSpace(d.Body) + "\n\n" + fillerParagraph
	}

	warnings := r.gate(article, d)
	brief := r.build(article, d, usage, revisions, warnings)
	return brief
}

type usage struct {
	inputTokens, outputTokens int
}

func mergeUsage(a, b usage) usage {
	return usage{inputTokens: a.inputTokens + b.inputTokens, outputTokens: a.outputTokens + b.outputTokens}
}

func (r *Rewriter) draft(ctx context.Context, article types.Article) (*draft, usage, error) {
	user := "title: " + article.Title + "\ncontent: " + article.Content +
		"\nsource: " + article.SourceID + "\nurl: " + article.URL

	resp, err := r.Client.Chat(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: config.BriefRewriterSystemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		MaxTokens:   1200,
		Model:       r.ModelID,
	})
	if err != nil {
		return nil, usage{}, &RewriteError{Kind: KindLLMUnavailable, ArticleID: article.ID, Wrapped: err}
	}

	d, err := parseSections(resp.Content)
	if err != nil {
		return nil, usage{}, err
	}
	return d, usage{inputTokens: resp.InputTokens, outputTokens: resp.OutputTokens}, nil
}

func (r *Rewriter) reviseForBias(ctx context.Context, article types.Article, d *draft) (*draft, usage, error) {
	user := "Rewrite the following brief body to remove loaded or biased language, " +
		"preserving the citations and exact section markup:\n\n" + d.Body
	return r.callAndReparse(ctx, article, d, user)
}

func (r *Rewriter) expand(ctx context.Context, article types.Article, d *draft) (*draft, usage, error) {
	user := "The brief body below is shorter than the required minimum of " +
		strconv.Itoa(r.Band.MinWords) + " words. Expand it with additional " +
		"factual detail from the source material while preserving citations " +
		"and exact section markup:\n\n" + d.Body
	return r.callAndReparse(ctx, article, d, user)
}

func (r *Rewriter) callAndReparse(ctx context.Context, article types.Article, prev *draft, userMsg string) (*draft, usage, error) {
	resp, err := r.Client.Chat(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: config.BriefRewriterSystemPrompt},
			{Role: "user", Content: userMsg},
		},
		Temperature: 0.2,
		MaxTokens:   1200,
		Model:       r.ModelID,
	})
	if err != nil {
		return prev, usage{}, &RewriteError{Kind: KindLLMUnavailable, ArticleID: article.ID, Wrapped: err}
	}
	d, err := parseSections(resp.Content)
	if err != nil {
		return prev, usage{}, err
	}
	return d, usage{inputTokens: resp.InputTokens, outputTokens: resp.OutputTokens}, nil
}

func containsBiasedTerm(body string) bool {
	lower := strings.ToLower(body)
	for _, term := range config.BiasLexicon {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func countBiasedTerms(body string) int {
	lower := strings.ToLower(body)
	count := 0
	for _, term := range config.BiasLexicon {
		count += strings.Count(lower, term)
	}
	return count
}

// gate applies spec.md §4.H.4: it repairs where possible (appends the
// originating URL, truncates overlong bodies) and returns any soft
// warnings rather than failing outright.
func (r *Rewriter) gate(article types.Article, d *draft) []string {
	var warnings []string

	hasOriginURL := false
	for _, s := range d.Sources {
		if strings.EqualFold(s, article.URL) {
			hasOriginURL = true
			break
		}
	}
	if !hasOriginURL && article.URL != "" {
		d.Sources = append(d.Sources, article.URL)
	}
	if len(d.Sources) < config.MinSources {
		warnings = append(warnings, string(KindInsufficientSources))
	}

	if !anyPrimarySource(d.Sources) {
		warnings = append(warnings, string(KindMissingPrimarySource))
	}

	if wc := wordCount(d.Body); wc > r.Band.MaxWords {
		d.Body = truncateToWords(d.Body, r.Band.MaxWords) + "..."
	}

	return warnings
}

func anyPrimarySource(sources []string) bool {
	for _, s := range sources {
		for _, re := range config.PrimaryDomainPatterns {
			if re.MatchString(s) {
				return true
			}
		}
	}
	return false
}

func truncateToWords(s string, n int) string {
	words := wordPattern.FindAllStringIndex(s, -1)
	if len(words) <= n {
		return s
	}
	end := words[n-1][1]
	return strings.TrimSpace(s[:end])
}

func (r *Rewriter) build(article types.Article, d *draft, u usage, revisions int, warnings []string) types.Brief {
	now := time.Now()
	subjectivity := subjectivityScore(d.Body)

	tokens := u.inputTokens + u.outputTokens
	cost := float64(u.inputTokens)/1_000_000*r.CostRateInPerMillion +
		float64(u.outputTokens)/1_000_000*r.CostRateOutPerMillion

	return types.Brief{
		ID:          types.BriefID(article.Category, d.Headline, now),
		Headline:    d.Headline,
		Body:        d.Body,
		SourceURLs:  d.Sources,
		Category:    article.Category,
		PublishedAt: now,
		Tags:        article.Tags,
		Status:      r.InitialStatus,
		Meta: types.BriefMetadata{
			ModelID:       r.ModelID,
			PromptVersion: promptVersion,
			Tokens:        tokens,
			CostUSD:       cost,
			ProcessingMS:  0,
			Subjectivity:  subjectivity,
			RevisionCount: revisions,
		},
	}
}

func subjectivityScore(body string) float64 {
	words := wordCount(body)
	if words == 0 {
		return 0
	}
	score := float64(countBiasedTerms(body)) / float64(words)
	if score > 1 {
		score = 1
	}
	return score
}

// fallbackBrief implements spec.md §7's LLM-failure fallback: a
// deterministically constructed brief so the batch never aborts on a
// provider outage.
func (r *Rewriter) fallbackBrief(article types.Article) types.Brief {
	now := time.Now()

	headline := article.Title
	if headline == "" {
		headline = "News Update"
	}

	body := article.Description
	if body == "" {
		body = article.Content
	}
	if wordCount(body) < r.Band.MinWords {
		body = strings.TrimSpace(body) + "\n\n" + fillerParagraph
	}
	if wc := wordCount(body); wc > r.Band.MaxWords {
		body = truncateToWords(body, r.Band.MaxWords) + "..."
	}

	sources := []string{article.URL}

	return types.Brief{
		ID:          types.BriefID(article.Category, headline, now),
		Headline:    headline,
		Body:        body,
		SourceURLs:  sources,
		Category:    article.Category,
		PublishedAt: now,
		Tags:        article.Tags,
		Status:      r.InitialStatus,
		Meta: types.BriefMetadata{
			ModelID:       "fallback",
			PromptVersion: promptVersion,
			Subjectivity:  subjectivityScore(body),
		},
	}
}
