// Package feed retrieves and parses one source's RSS/Atom page with
// timeouts, retries, and opportunistic content enrichment.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsroom/config"
	"newsroom/types"
)

const (
	fetchTimeout    = 15 * time.Second
	userAgent       = "newsroom-fetcher/1.0 (+https://newsroom.internal)"
	maxAttempts     = 3
	initialBackoff  = 2 * time.Second
	backoffMultiple = 1.5
)

// FeedPage is the parsed result of one successful fetch, trimmed to
// the fields the rest of the pipeline needs.
type FeedPage struct {
	Items []FeedItem
}

// FeedItem is a single parsed entry, with empty-string/now fallbacks
// already applied per spec.md §4.A.
type FeedItem struct {
	Title       string
	Description string
	Content     string
	Link        string
	GUID        string
	PublishedAt time.Time
}

// Fetch retrieves and parses source. Retry/backoff state lives entirely
// on the stack of this call so concurrent fetches of different sources
// never share or corrupt a backoff schedule.
func Fetch(ctx context.Context, source types.Source) (*FeedPage, error) {
	if _, err := url.ParseRequestURI(source.URL); err != nil || !strings.HasPrefix(source.URL, "http") {
		return nil, &FetchError{Kind: KindInvalidURL, Source: source.ID, Wrapped: err}
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		page, err := attemptFetch(ctx, source)
		if err == nil {
			return page, nil
		}

		lastErr = err
		var fe *FetchError
		if errors.As(err, &fe) && !fe.Retriable() {
			return nil, err
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &FetchError{Kind: KindTimeout, Source: source.ID, Wrapped: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * backoffMultiple)
	}
	return nil, lastErr
}

func attemptFetch(ctx context.Context, source types.Source) (*FeedPage, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindInvalidURL, Source: source.ID, Wrapped: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(source.ID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		// fall through to parse
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &FetchError{Kind: KindHTTPClientErr, Source: source.ID, Wrapped: fmt.Errorf("status %d", resp.StatusCode)}
	default:
		return nil, &FetchError{Kind: KindHTTPServerErr, Source: source.ID, Wrapped: fmt.Errorf("status %d", resp.StatusCode)}
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindParseError, Source: source.ID, Wrapped: err}
	}

	count := len(parsed.Items)
	if count > config.MaxArticlesPerFeed {
		count = config.MaxArticlesPerFeed
	}

	now := time.Now()
	items := make([]FeedItem, 0, count)
	for i := 0; i < count; i++ {
		raw := parsed.Items[i]

		publishedAt := now
		if raw.PublishedParsed != nil {
			publishedAt = *raw.PublishedParsed
		} else if raw.UpdatedParsed != nil {
			publishedAt = *raw.UpdatedParsed
		}

		content := raw.Content
		if content == "" {
			content = raw.Description
		}

		items = append(items, FeedItem{
			Title:       raw.Title,
			Description: raw.Description,
			Content:     content,
			Link:        raw.Link,
			GUID:        raw.GUID,
			PublishedAt: publishedAt,
		})
	}

	return &FeedPage{Items: items}, nil
}

func classifyTransportError(sourceID string, err error) *FetchError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &FetchError{Kind: KindDNSFailure, Source: sourceID, Wrapped: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &FetchError{Kind: KindConnRefused, Source: sourceID, Wrapped: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, Source: sourceID, Wrapped: err}
	}
	return &FetchError{Kind: KindHTTPServerErr, Source: sourceID, Wrapped: err}
}
