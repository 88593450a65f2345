package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// BloomConfig configures the Redis-backed probabilistic filter used as
// a cross-batch accelerator in front of the exact-key pass.
type BloomConfig struct {
	Addr      string
	Password  string
	DB        int
	Key       string
	TTL       time.Duration
	Capacity  int
	ErrorRate float64
}

// DefaultBloomConfig returns sane defaults for an operator who only
// wants to supply an address.
func DefaultBloomConfig(addr, password string) BloomConfig {
	return BloomConfig{
		Addr:      addr,
		Password:  password,
		Key:       "newsroom:articles:bloom",
		TTL:       24 * time.Hour,
		Capacity:  200000,
		ErrorRate: 0.001,
	}
}

// SeenFilter is a fast-path hint for articles already observed in a
// previous batch. It never replaces the authoritative exact/similarity
// passes in Run — a false positive here only costs a wasted lookup,
// never a missed duplicate, since the in-batch exact pass always runs
// regardless. A nil *SeenFilter behaves as "never seen before" so the
// accelerator can be disabled cleanly when Redis is not configured.
type SeenFilter struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSeenFilter connects to Redis and ensures the bloom key exists.
func NewSeenFilter(cfg BloomConfig) (*SeenFilter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	exists, err := client.Exists(ctx, cfg.Key).Result()
	if err == nil && exists == 0 {
		_ = client.Do(ctx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity).Err()
	}

	return &SeenFilter{client: client, key: cfg.Key, ttl: cfg.TTL}, nil
}

// Close releases the underlying Redis connection.
func (f *SeenFilter) Close() error {
	if f == nil {
		return nil
	}
	return f.client.Close()
}

// Seen reports whether the article's (url, title) pair was added in an
// earlier batch. A disabled (nil) filter or any Redis error reports
// false, which only costs a redundant exact-pass lookup.
func (f *SeenFilter) Seen(a fastKeyable) bool {
	if f == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := f.client.Do(ctx, "BF.EXISTS", f.key, fastKey(a)).Result()
	if err != nil {
		return false
	}
	switch v := res.(type) {
	case int64:
		return v == 1
	default:
		return false
	}
}

// MarkSeen records the article's (url, title) pair for future batches
// and refreshes the key's sliding-window TTL.
func (f *SeenFilter) MarkSeen(a fastKeyable) {
	if f == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := f.client.Do(ctx, "BF.ADD", f.key, fastKey(a)).Err(); err != nil {
		return
	}
	_ = f.client.Expire(ctx, f.key, f.ttl).Err()
}

// fastKeyable is the narrow surface the accelerator needs from an
// article — title and URL — kept independent of the types package so
// the filter stays a pure hashing utility.
type fastKeyable interface {
	FastKeyParts() (url, title string)
}

func fastKey(a fastKeyable) string {
	rawURL, title := a.FastKeyParts()
	combined := normalizeURL(rawURL) + "|" + normalizeTitle(title)
	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:])
}

func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(t))), " ")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	out := u.String()
	return strings.TrimRight(out, "/")
}
