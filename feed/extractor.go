package feed

import (
	"log"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"

	"newsroom/types"
)

const (
	extractorWorkerCount = 5
	extractorTimeout     = 30 * time.Second
	thinContentWords     = 40
)

// EnrichContent opportunistically fills in Article.Content for
// articles whose feed-supplied description/content is thin, using a
// bounded worker pool. It runs after Fetch returns, under its own
// deadline, and never extends the fetcher's 15s contract; failures are
// non-fatal and leave the article's feed-supplied content untouched.
func EnrichContent(articles []*types.Article) {
	candidates := make([]*types.Article, 0, len(articles))
	for _, a := range articles {
		if isThin(a.Content) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return
	}

	var wg sync.WaitGroup
	queue := make(chan *types.Article, len(candidates))
	for i := 0; i < extractorWorkerCount; i++ {
		go func(workerID int) {
			for a := range queue {
				if err := extractOne(a); err != nil {
					log.Printf("[extractor %d] %s: %v", workerID, a.URL, err)
				}
				wg.Done()
			}
		}(i)
	}

	for _, a := range candidates {
		wg.Add(1)
		queue <- a
	}
	wg.Wait()
	close(queue)
}

func isThin(content string) bool {
	return len(strings.Fields(content)) < thinContentWords
}

func extractOne(article *types.Article) error {
	extracted, err := readability.FromURL(article.URL, extractorTimeout)
	if err != nil {
		return err
	}

	if len(strings.Fields(extracted.TextContent)) > len(strings.Fields(article.Content)) {
		article.Content = extracted.TextContent
	}
	if article.ImageURL == "" {
		article.ImageURL = extracted.Image
	}
	if article.Author == "" {
		article.Author = extracted.Byline
	}
	return nil
}
