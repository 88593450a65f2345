// Package dedup implements the exact-match and similarity-clustering
// pass that collapses duplicate coverage of the same story before
// quota distribution.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"

	"newsroom/config"
	"newsroom/types"
)

// Cluster groups one or more duplicate articles behind a single
// chosen representative, for observability.
type Cluster struct {
	Chosen    types.Article
	Duplicates []types.Article
}

// Result is the output of Run: the unique articles to carry forward,
// plus the full clustering for observability/logging.
type Result struct {
	Unique   []types.Article
	Clusters []Cluster
}

// Run executes spec.md §4.F against the drained Holding Queue's
// candidates plus the set of articles already stored today (the
// day-window that pipeline.runBatch resolves via store.ArticlesInWindow):
// an exact key pass, then an O(n^2) weighted-similarity pass against the
// union of the two sets, then best-of-cluster selection. A cluster that
// absorbs any already-stored article contributes nothing to Unique,
// since the story is already persisted; Unique only ever contains
// members of candidates. The similarity cache is scoped to this call and
// discarded on return.
func Run(candidates, alreadyStored []types.Article) Result {
	// alreadyStored first so the exact pass's first-seen-wins rule keeps
	// the persisted article as survivor when a fresh candidate is an
	// exact repeat of something already stored today.
	input := make([]types.Article, 0, len(alreadyStored)+len(candidates))
	input = append(input, alreadyStored...)
	input = append(input, candidates...)
	numExisting := len(alreadyStored)

	exactSurvivors, exactSurvivorIsExisting, exactDupesByIdx := exactPass(input, numExisting)

	n := len(exactSurvivors)
	clusterOf := make([]int, n)
	for i := range clusterOf {
		clusterOf[i] = i
	}
	cache := make(map[[2]int]float64)

	for i := 0; i < n; i++ {
		if clusterOf[i] != i {
			continue // already absorbed into an earlier cluster
		}
		for j := i + 1; j < n; j++ {
			if clusterOf[j] != j {
				continue
			}
			sim := cachedSimilarity(cache, i, j, exactSurvivors[i], exactSurvivors[j])
			if sim >= config.DedupSimilarityThreshold {
				clusterOf[j] = i
			}
		}
	}

	groups := make(map[int][]int)
	for idx, root := range clusterOf {
		groups[root] = append(groups[root], idx)
	}

	roots := make([]int, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	result := Result{}
	for _, root := range roots {
		members := groups[root]

		alreadyCovered := false
		for _, m := range members {
			if exactSurvivorIsExisting[m] {
				alreadyCovered = true
				break
			}
		}
		for _, m := range exactDupesByIdx[root] {
			if m.existing {
				alreadyCovered = true
				break
			}
		}

		chosenIdx := bestOfCluster(exactSurvivors, members)
		cluster := Cluster{Chosen: exactSurvivors[chosenIdx]}
		for _, m := range members {
			if m != chosenIdx {
				cluster.Duplicates = append(cluster.Duplicates, exactSurvivors[m])
			}
		}
		for _, m := range members {
			for _, d := range exactDupesByIdx[m] {
				cluster.Duplicates = append(cluster.Duplicates, d.article)
			}
		}
		result.Clusters = append(result.Clusters, cluster)

		if !alreadyCovered {
			result.Unique = append(result.Unique, exactSurvivors[chosenIdx])
		}
	}
	return result
}

func cachedSimilarity(cache map[[2]int]float64, i, j int, a, b types.Article) float64 {
	key := [2]int{i, j}
	if v, ok := cache[key]; ok {
		return v
	}
	sim := Similarity(a, b)
	cache[key] = sim
	return sim
}

// exactDupe is a dropped exact-match duplicate, tagged with whether it
// came from the already-stored-today set rather than a fresh candidate.
type exactDupe struct {
	article  types.Article
	existing bool
}

// exactPass builds the key hash(lower(title)||lower(url)||first100(lower(content)))
// and drops later collisions, returning the surviving articles in
// first-seen order, a parallel slice flagging which survivors came from
// the already-stored-today set (input[:numExisting]), and the dropped
// duplicates keyed by the surviving article's index in the output slice.
func exactPass(input []types.Article, numExisting int) ([]types.Article, []bool, map[int][]exactDupe) {
	seen := make(map[string]int) // exact key -> index in survivors
	survivors := make([]types.Article, 0, len(input))
	isExisting := make([]bool, 0, len(input))
	dupes := make(map[int][]exactDupe)

	for i, a := range input {
		key := exactKey(a)
		if idx, ok := seen[key]; ok {
			dupes[idx] = append(dupes[idx], exactDupe{article: a, existing: i < numExisting})
			continue
		}
		seen[key] = len(survivors)
		survivors = append(survivors, a)
		isExisting = append(isExisting, i < numExisting)
	}
	return survivors, isExisting, dupes
}

func exactKey(a types.Article) string {
	content := a.Content
	if len(content) > 100 {
		content = content[:100]
	}
	raw := strings.ToLower(a.Title) + "|" + strings.ToLower(a.URL) + "|" + strings.ToLower(content)
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Similarity computes the weighted title/content/URL similarity from
// spec.md §4.F.2, normalizing by the sum of applicable weights when a
// field is missing on either side.
func Similarity(a, b types.Article) float64 {
	var sum, weight float64

	if a.Title != "" && b.Title != "" {
		sum += jaccard(wordSet(a.Title), wordSet(b.Title)) * 0.4
		weight += 0.4
	}
	if a.Content != "" && b.Content != "" {
		sum += jaccard(wordSet(a.Content), wordSet(b.Content)) * 0.4
		weight += 0.4
	}
	if a.URL != "" && b.URL != "" {
		sum += urlSimilarity(a.URL, b.URL) * 0.2
		weight += 0.2
	}

	if weight == 0 {
		return 0
	}
	return sum / weight
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}

func urlSimilarity(a, b string) float64 {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		if a == b {
			return 1
		}
		return 0
	}
	if !strings.EqualFold(ua.Host, ub.Host) {
		return 0
	}

	segA := pathSegments(ua.Path)
	segB := pathSegments(ub.Path)
	switch {
	case len(segA) == 0 && len(segB) == 0:
		return 1
	case len(segA) == 0 || len(segB) == 0:
		return 0.5
	}

	common := 0
	setB := make(map[string]struct{}, len(segB))
	for _, s := range segB {
		setB[s] = struct{}{}
	}
	for _, s := range segA {
		if _, ok := setB[s]; ok {
			common++
		}
	}

	maxLen := len(segA)
	if len(segB) > maxLen {
		maxLen = len(segB)
	}
	return float64(common) / float64(maxLen)
}

func pathSegments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// score implements spec.md §4.F.3's best-of-cluster scoring function,
// also reused unchanged by the quota distributor for in-category
// ranking.
func score(a types.Article, now time.Time) float64 {
	contentScore := float64(len(a.Content)) / 1000
	if contentScore > 2.0 {
		contentScore = 2.0
	}

	officialScore := 0.0
	if config.OfficialSources[a.SourceID] {
		officialScore = 3.0
	}

	hoursSince := now.Sub(a.PublishedAt).Hours()
	recencyScore := 5 - hoursSince
	if recencyScore < 0 {
		recencyScore = 0
	}

	return contentScore + officialScore + recencyScore
}

// Score exposes the shared scoring function for the quota distributor.
func Score(a types.Article, now time.Time) float64 { return score(a, now) }

func bestOfCluster(articles []types.Article, members []int) int {
	now := time.Now()
	best := members[0]
	for _, m := range members[1:] {
		if better(articles[m], articles[best], now) {
			best = m
		}
	}
	return best
}

func better(a, b types.Article, now time.Time) bool {
	sa, sb := score(a, now), score(b, now)
	if sa != sb {
		return sa > sb
	}
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.Before(b.PublishedAt)
	}
	return a.ID < b.ID
}
