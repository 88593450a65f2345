package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"newsroom/types"
)

const chunkSize = 50

// PostgresStore implements Store against PostgreSQL via database/sql.
// Grounded on a repository-per-entity shape with $N placeholders and
// ON CONFLICT upserts, since the ingestion/dedup pipeline this module
// was adapted from persisted to S3 and a vector store rather than SQL.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to Postgres using dsn and verifies connectivity.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// UpsertArticles dedupes the batch by id and by URL, then upserts in
// chunks of 50; a failing chunk does not abort the remaining chunks
// (spec.md §4.I).
func (s *PostgresStore) UpsertArticles(articles []types.Article) []error {
	deduped := dedupeArticlesByIDAndURL(articles)

	var errs []error
	for start := 0; start < len(deduped); start += chunkSize {
		end := start + chunkSize
		if end > len(deduped) {
			end = len(deduped)
		}
		if err := s.upsertArticleChunk(deduped[start:end]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func dedupeArticlesByIDAndURL(articles []types.Article) []types.Article {
	seenID := make(map[string]bool)
	seenURL := make(map[string]bool)
	out := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		if seenID[a.ID] || seenURL[a.URL] {
			continue
		}
		seenID[a.ID] = true
		seenURL[a.URL] = true
		out = append(out, a)
	}
	return out
}

func (s *PostgresStore) upsertArticleChunk(chunk []types.Article) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO articles (id, title, description, content, url, source_id, category, published_at, captured_at, tags, brief_made)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			tags = EXCLUDED.tags,
			brief_made = EXCLUDED.brief_made
	`
	for _, a := range chunk {
		if _, err := tx.ExecContext(ctx, query,
			a.ID, a.Title, a.Description, a.Content, a.URL, a.SourceID, string(a.Category),
			a.PublishedAt, a.CapturedAt, strings.Join(a.Tags, ","), a.BriefMade,
		); err != nil {
			return fmt.Errorf("upsert article %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// UpsertBriefs upserts on a single conflict key (id).
func (s *PostgresStore) UpsertBriefs(briefs []types.Brief) []error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const query = `
		INSERT INTO briefs (id, headline, body, source_urls, category, published_at, tags, status,
			model_id, prompt_version, tokens, cost_usd, processing_ms, subjectivity, revision_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			body = EXCLUDED.body,
			source_urls = EXCLUDED.source_urls,
			status = EXCLUDED.status
	`
	var errs []error
	for _, b := range briefs {
		if _, err := s.db.ExecContext(ctx, query,
			b.ID, b.Headline, b.Body, strings.Join(b.SourceURLs, ","), string(b.Category), b.PublishedAt,
			strings.Join(b.Tags, ","), string(b.Status), b.Meta.ModelID, b.Meta.PromptVersion,
			b.Meta.Tokens, b.Meta.CostUSD, b.Meta.ProcessingMS, b.Meta.Subjectivity, b.Meta.RevisionCount,
		); err != nil {
			errs = append(errs, fmt.Errorf("upsert brief %s: %w", b.ID, err))
		}
	}
	return errs
}

func (s *PostgresStore) AppendProcessingLog(record types.ProcessingLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const query = `
		INSERT INTO processing_logs (success, articles_processed, briefs_generated, errors,
			processing_ms, tokens, cost_usd, model_id, prompt_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Success, record.ArticlesProcessed, record.BriefsGenerated, strings.Join(record.Errors, "; "),
		record.ProcessingMS, record.Tokens, record.CostUSD, record.ModelID, record.PromptVersion, record.Timestamp,
	)
	return err
}

func (s *PostgresStore) ArticlesInWindow(start, end time.Time) ([]types.Article, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const query = `
		SELECT id, title, description, content, url, source_id, category, published_at, captured_at, tags, brief_made
		FROM articles WHERE published_at >= $1 AND published_at <= $2
	`
	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (s *PostgresStore) ArticleExists(url, title string) (bool, error) {
	exists, err := s.URLExists(url)
	if err != nil || exists {
		return exists, err
	}
	candidates, err := s.TitleCandidates(title, 1)
	if err != nil {
		return false, err
	}
	return len(candidates) > 0, nil
}

func (s *PostgresStore) URLExists(url string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`, url).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) TitleCandidates(titleWindow string, limit int) ([]types.Article, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const query = `
		SELECT id, title, description, content, url, source_id, category, published_at, captured_at, tags, brief_made
		FROM articles WHERE title ILIKE '%' || $1 || '%' ORDER BY captured_at DESC LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, titleWindow, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

func (s *PostgresStore) GetSource(id string) (*types.Source, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var src types.Source
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, url, category, active, last_checked_at, last_error FROM sources WHERE id = $1`, id,
	).Scan(&src.ID, &src.Name, &src.URL, &category, &src.Active, &src.LastCheckedAt, &src.LastError)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	src.Category = types.Category(category)
	return &src, nil
}

func (s *PostgresStore) UpdateSourceProbe(id string, at time.Time, fetchErr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`UPDATE sources SET last_checked_at = $2, last_error = $3 WHERE id = $1`, id, at, fetchErr)
	return err
}

func (s *PostgresStore) CategoryCountsToday(now time.Time) (map[types.Category]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	midnight := LocalMidnight(now)
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM articles WHERE published_at >= $1 GROUP BY category`, midnight)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[types.Category]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		out[types.Category(category)] = count
	}
	return out, rows.Err()
}

func scanArticles(rows *sql.Rows) ([]types.Article, error) {
	var out []types.Article
	for rows.Next() {
		var a types.Article
		var category, tags string
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Content, &a.URL, &a.SourceID,
			&category, &a.PublishedAt, &a.CapturedAt, &tags, &a.BriefMade); err != nil {
			return nil, err
		}
		a.Category = types.Category(category)
		if tags != "" {
			a.Tags = strings.Split(tags, ",")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
