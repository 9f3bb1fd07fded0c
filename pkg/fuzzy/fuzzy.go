// Package fuzzy scores pinyin queries against indexed name keys.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/bastiangx/pinyinctrlf/pkg/index"
	"github.com/bastiangx/pinyinctrlf/pkg/normalize"
)

// Constants for scoring
const (
	exactScore        = 100.0
	prefixBaseScore   = 90.0
	containsBaseScore = 70.0
	coverageWeight    = 10.0
	similarityWeight  = 50.0
)

// Defaults for Options.
const (
	DefaultMaxResults    = 8
	DefaultShortQueryLen = 3
	DefaultShortBonusCap = 10
	DefaultLongBonusCap  = 5
)

// Options tunes result count and the frequency bonus.
type Options struct {
	MaxResults    int
	ShortQueryLen int // queries up to this length get ShortBonusCap
	ShortBonusCap int
	LongBonusCap  int
}

// DefaultOptions returns the stock ranking options.
func DefaultOptions() Options {
	return Options{
		MaxResults:    DefaultMaxResults,
		ShortQueryLen: DefaultShortQueryLen,
		ShortBonusCap: DefaultShortBonusCap,
		LongBonusCap:  DefaultLongBonusCap,
	}
}

// Result is a scored index item.
type Result struct {
	Item  *index.Item
	Score float64
}

// Matcher ranks index items against a query.
type Matcher struct {
	opts Options
}

// NewMatcher creates a matcher; zero fields in opts take their defaults.
// A negative bonus cap turns that frequency bonus off.
func NewMatcher(opts Options) *Matcher {
	def := DefaultOptions()
	if opts.MaxResults <= 0 {
		opts.MaxResults = def.MaxResults
	}
	if opts.ShortQueryLen <= 0 {
		opts.ShortQueryLen = def.ShortQueryLen
	}
	opts.ShortBonusCap = bonusCap(opts.ShortBonusCap, def.ShortBonusCap)
	opts.LongBonusCap = bonusCap(opts.LongBonusCap, def.LongBonusCap)
	return &Matcher{opts: opts}
}

func bonusCap(v, def int) int {
	switch {
	case v == 0:
		return def
	case v < 0:
		return 0
	}
	return v
}

// Search returns the best matching items for query, highest score first.
// Every item gets its frequency bonus on top of its best key score; items
// without keys, or totalling 0, are left out. Equal scores keep index order.
func (m *Matcher) Search(query string, idx *index.Index) []Result {
	q := normalize.Query(query)
	if q == "" || idx.Len() == 0 {
		return []Result{}
	}

	var results []Result
	for _, item := range idx.Items {
		if len(item.Keys) == 0 {
			continue
		}
		best := 0.0
		for _, key := range item.Keys {
			if score := ScoreKey(q, normalize.Query(key)); score > best {
				best = score
			}
		}
		score := best + m.frequencyBonus(q, item.Count)
		if score <= 0 {
			continue
		}
		results = append(results, Result{Item: item, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > m.opts.MaxResults {
		results = results[:m.opts.MaxResults]
	}
	return results
}

// frequencyBonus rewards frequent names, more so for short queries.
func (m *Matcher) frequencyBonus(q string, count int) float64 {
	if len(q) <= m.opts.ShortQueryLen {
		return float64(min(m.opts.ShortBonusCap, count))
	}
	return float64(min(m.opts.LongBonusCap, count))
}

// ScoreKey scores a normalized query against a normalized key.
// Tiers are tried in order: exact, prefix, substring, edit distance.
func ScoreKey(query, key string) float64 {
	if query == "" || key == "" {
		return 0
	}
	if key == query {
		return exactScore
	}

	coverage := float64(len(query)) / float64(len(key))
	if strings.HasPrefix(key, query) {
		return prefixBaseScore + coverage*coverageWeight
	}
	if strings.Contains(key, query) {
		return containsBaseScore + coverage*coverageWeight
	}

	dist := levenshteinDistance(query, key)
	maxLen := max(len(query), len(key))
	similarity := 1 - float64(dist)/float64(maxLen)
	return similarity * similarityWeight
}

// Search ranks idx against query with the default options.
func Search(query string, idx *index.Index) []Result {
	return NewMatcher(DefaultOptions()).Search(query, idx)
}
