package types

import (
	"strconv"
	"testing"
	"time"
)

func TestArticleIDIsDeterministic(t *testing.T) {
	a := ArticleID("ap-national", "guid-123", "https://apnews.com/story")
	b := ArticleID("ap-national", "guid-123", "https://apnews.com/story")
	if a != b {
		t.Fatalf("expected ArticleID to be deterministic, got %q and %q", a, b)
	}
}

func TestArticleIDDiffersOnAnyInput(t *testing.T) {
	base := ArticleID("ap-national", "guid-123", "https://apnews.com/story")
	if got := ArticleID("npr-national", "guid-123", "https://apnews.com/story"); got == base {
		t.Fatalf("expected a different source to change the id")
	}
	if got := ArticleID("ap-national", "guid-999", "https://apnews.com/story"); got == base {
		t.Fatalf("expected a different guid to change the id")
	}
	if got := ArticleID("ap-national", "guid-123", "https://apnews.com/other"); got == base {
		t.Fatalf("expected a different url to change the id")
	}
}

func TestBriefIDFormat(t *testing.T) {
	at := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	id := BriefID(CategoryFinanceMacro, "Fed Raises Rates Sharply Today", at)
	want := "FINANCE_MACRO-fed-raises-rates-" + strconv.FormatInt(at.UnixMilli(), 10)
	if id != want {
		t.Fatalf("BriefID() = %q, want %q", id, want)
	}
}

func TestBriefIDFallsBackToUntitledForPunctuationOnlyHeadline(t *testing.T) {
	at := time.Now()
	id := BriefID(CategoryUSNational, "!!! ...", at)
	want := "US_NATIONAL-untitled-" + strconv.FormatInt(at.UnixMilli(), 10)
	if id != want {
		t.Fatalf("BriefID() = %q", id)
	}
}

func TestProcessingResultToLogCarriesFields(t *testing.T) {
	result := ProcessingResult{
		Success:           true,
		ArticlesProcessed: 5,
		BriefsGenerated:   3,
		Tokens:            1000,
		CostUSD:           0.42,
	}
	at := time.Now()
	log := result.ToLog("command-r", "v1", at)

	if log.ArticlesProcessed != 5 || log.BriefsGenerated != 3 {
		t.Fatalf("ToLog did not carry counts: %+v", log)
	}
	if log.ModelID != "command-r" || log.PromptVersion != "v1" {
		t.Fatalf("ToLog did not carry model metadata: %+v", log)
	}
	if !log.Timestamp.Equal(at) {
		t.Fatalf("ToLog did not carry the timestamp")
	}
}
