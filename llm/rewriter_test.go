package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"newsroom/config"
	"newsroom/types"
)

type queuedClient struct {
	responses []ChatResponse
	errs      []error
	calls     int
}

func (c *queuedClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i >= len(c.responses) {
		i = len(c.responses) - 1
	}
	resp := c.responses[i]
	return &resp, nil
}

func sectioned(headline, body, sources string) string {
	return "==HEADLINE==\n" + headline + "\n==BRIEF==\n" + body +
		"\n==CONTEXT==\nNone\n==SOURCES==\n" + sources + "\n==SIDE-CAR==\n{}"
}

func longEnoughBody(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func newTestRewriter(client Client) *Rewriter {
	return &Rewriter{
		Client:                client,
		Band:                  config.DefaultWordBand,
		ModelID:               "test-model",
		InitialStatus:         types.BriefStatusPending,
		CostRateInPerMillion:  0.15,
		CostRateOutPerMillion: 0.60,
	}
}

func TestRewriteHappyPathBuildsBrief(t *testing.T) {
	body := longEnoughBody(config.DefaultWordBand.MinWords + 20)
	client := &queuedClient{responses: []ChatResponse{
		{Content: sectioned("Fed Raises Rates", body, "https://example.com/a"), InputTokens: 100, OutputTokens: 200},
	}}
	r := newTestRewriter(client)

	article := types.Article{ID: "art-1", Category: types.CategoryFinanceMacro, URL: "https://example.com/a"}
	brief := r.Rewrite(context.Background(), article)

	if brief.Headline != "Fed Raises Rates" {
		t.Fatalf("Headline = %q", brief.Headline)
	}
	if brief.Status != types.BriefStatusPending {
		t.Fatalf("Status = %q, want pending", brief.Status)
	}
	if brief.Meta.Tokens != 300 {
		t.Fatalf("Tokens = %d, want 300", brief.Meta.Tokens)
	}
	if brief.Meta.RevisionCount != 0 {
		t.Fatalf("RevisionCount = %d, want 0", brief.Meta.RevisionCount)
	}
}

func TestRewriteFallsBackOnLLMFailure(t *testing.T) {
	client := &queuedClient{errs: []error{errors.New("provider unavailable")}}
	r := newTestRewriter(client)

	article := types.Article{ID: "art-1", Title: "Original Title", Description: longEnoughBody(config.DefaultWordBand.MinWords + 5), URL: "https://example.com/a"}
	brief := r.Rewrite(context.Background(), article)

	if brief.Headline != "Original Title" {
		t.Fatalf("expected fallback headline to use article title, got %q", brief.Headline)
	}
	if brief.Meta.ModelID != "fallback" {
		t.Fatalf("expected fallback ModelID, got %q", brief.Meta.ModelID)
	}
}

func TestRewriteAppendsFillerWhenStillShortAfterExpansion(t *testing.T) {
	shortBody := "Too short."
	resp := ChatResponse{Content: sectioned("Headline", shortBody, "https://example.com/a")}
	client := &queuedClient{responses: []ChatResponse{resp, resp, resp, resp}}
	r := newTestRewriter(client)

	article := types.Article{ID: "art-1", URL: "https://example.com/a"}
	brief := r.Rewrite(context.Background(), article)

	if !strings.Contains(brief.Body, fillerParagraph) {
		t.Fatalf("expected filler paragraph appended when still short after expansion attempts")
	}
	if client.calls != 1+maxExpandTries {
		t.Fatalf("expected draft + %d expand attempts = %d calls, got %d", maxExpandTries, 1+maxExpandTries, client.calls)
	}
}

func TestRewriteRevisesOnBiasedLanguage(t *testing.T) {
	biasedBody := longEnoughBody(config.DefaultWordBand.MinWords+20) + " this was a brutal and shocking attack"
	cleanBody := longEnoughBody(config.DefaultWordBand.MinWords + 20)
	client := &queuedClient{responses: []ChatResponse{
		{Content: sectioned("Headline", biasedBody, "https://example.com/a")},
		{Content: sectioned("Headline", cleanBody, "https://example.com/a")},
	}}
	r := newTestRewriter(client)

	article := types.Article{ID: "art-1", URL: "https://example.com/a"}
	brief := r.Rewrite(context.Background(), article)

	if brief.Meta.RevisionCount != 1 {
		t.Fatalf("RevisionCount = %d, want 1", brief.Meta.RevisionCount)
	}
	if brief.Body != cleanBody {
		t.Fatalf("expected revised body to replace the biased draft")
	}
}

func TestGateAppendsOriginURLWhenMissing(t *testing.T) {
	body := longEnoughBody(config.DefaultWordBand.MinWords + 5)
	client := &queuedClient{responses: []ChatResponse{
		{Content: sectioned("Headline", body, "https://other-source.com/story")},
	}}
	r := newTestRewriter(client)

	article := types.Article{ID: "art-1", URL: "https://example.com/origin"}
	brief := r.Rewrite(context.Background(), article)

	found := false
	for _, s := range brief.SourceURLs {
		if s == "https://example.com/origin" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected gate to append the origin URL, got %v", brief.SourceURLs)
	}
}

func TestGateTruncatesOverlongBody(t *testing.T) {
	body := longEnoughBody(config.DefaultWordBand.MaxWords + 50)
	client := &queuedClient{responses: []ChatResponse{
		{Content: sectioned("Headline", body, "https://example.com/a")},
	}}
	r := newTestRewriter(client)

	article := types.Article{ID: "art-1", URL: "https://example.com/a"}
	brief := r.Rewrite(context.Background(), article)

	if wordCount(brief.Body) > config.DefaultWordBand.MaxWords+1 {
		t.Fatalf("expected body truncated near MaxWords, got %d words", wordCount(brief.Body))
	}
	if !strings.HasSuffix(brief.Body, "...") {
		t.Fatalf("expected truncated body to end with ellipsis")
	}
}

func TestSubjectivityScoreClippedToOne(t *testing.T) {
	// One \w+ word holding two lexicon terms: 2 matches / 1 word = 2.
	body := "brutalsavage"
	if got := subjectivityScore(body); got != 1 {
		t.Fatalf("subjectivityScore() = %v, want 1 (clipped)", got)
	}
}
