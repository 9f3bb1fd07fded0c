// Package session owns the name index of one loaded document and serializes
// every operation on it.
package session

import (
	"io"
	"sync"
	"time"

	"github.com/bastiangx/pinyinctrlf/pkg/candidate"
	"github.com/bastiangx/pinyinctrlf/pkg/fuzzy"
	"github.com/bastiangx/pinyinctrlf/pkg/highlight"
	"github.com/bastiangx/pinyinctrlf/pkg/index"
	"github.com/bastiangx/pinyinctrlf/pkg/normalize"
	"github.com/bastiangx/pinyinctrlf/pkg/romanize"
	"github.com/bastiangx/pinyinctrlf/pkg/segment"
	"github.com/charmbracelet/log"
	"github.com/rcrowley/go-metrics"
)

// DefaultBuildDelay is how long Rebuild yields before scanning, so callers can
// report a building status first.
const DefaultBuildDelay = 10 * time.Millisecond

// Document is a live, highlightable text tree.
type Document interface {
	highlight.Surface
	Root() segment.Node
	Render(w io.Writer) error
}

// Options configures a Session; zero values take defaults.
// A negative BuildDelay disables the delay.
type Options struct {
	BuildDelay  time.Duration
	Extractor   *candidate.Extractor
	Matcher     *fuzzy.Matcher
	Highlighter *highlight.Highlighter
	CacheSize   int
}

// Stats is a snapshot of the session state and its metrics.
type Stats struct {
	Indexed       bool
	Candidates    int
	Items         int
	BuildMs       int64
	Builds        int64
	Searches      int64
	Highlights    int64
	MeanSearchUs  float64
	MeanNames     float64
	CachedQueries int
	CacheHits     int64
}

// Session holds the single index for a document.
type Session struct {
	mu       sync.Mutex
	doc      Document
	provider romanize.Provider
	opts     Options
	idx      *index.Index
	cache    *QueryCache

	registry   metrics.Registry
	buildTimer metrics.Timer
	searchTime metrics.Timer
	markTime   metrics.Timer
	names      metrics.Histogram
}

// New creates a session over doc. No index exists until the first Rebuild.
func New(doc Document, provider romanize.Provider, opts Options) *Session {
	switch {
	case opts.BuildDelay == 0:
		opts.BuildDelay = DefaultBuildDelay
	case opts.BuildDelay < 0:
		opts.BuildDelay = 0
	}
	if opts.Extractor == nil {
		opts.Extractor = candidate.NewExtractor(candidate.DefaultMinLen, candidate.DefaultMaxLen)
	}
	if opts.Matcher == nil {
		opts.Matcher = fuzzy.NewMatcher(fuzzy.DefaultOptions())
	}
	if opts.Highlighter == nil {
		opts.Highlighter = highlight.New(highlight.DefaultMaxMatches)
	}

	registry := metrics.NewRegistry()
	return &Session{
		doc:        doc,
		provider:   provider,
		opts:       opts,
		cache:      NewQueryCache(opts.CacheSize),
		registry:   registry,
		buildTimer: metrics.NewRegisteredTimer("index.build", registry),
		searchTime: metrics.NewRegisteredTimer("search.query", registry),
		markTime:   metrics.NewRegisteredTimer("highlight.apply", registry),
		names:      metrics.NewRegisteredHistogram("index.candidates", registry, metrics.NewUniformSample(512)),
	}
}

// Rebuild scans the document and replaces the index.
// Without force it does nothing once an index exists. It reports whether a
// new index was built.
func (s *Session) Rebuild(force bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx != nil && !force {
		return false
	}
	if s.opts.BuildDelay > 0 {
		time.Sleep(s.opts.BuildDelay)
	}

	s.buildTimer.Time(func() {
		groups := segment.Segment(s.doc.Root())
		counts := s.opts.Extractor.Extract(groups)
		s.idx = index.Build(counts, s.provider)
	})
	s.cache.Reset()
	s.names.Update(int64(s.idx.Total))

	log.Debugf("rebuilt index: %d candidates in %dms", s.idx.Total, s.idx.ElapsedMs())
	return true
}

// Index returns the current index, nil before the first build.
func (s *Session) Index() *index.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

// Invalidate drops the index; the next Rebuild scans again.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = nil
	s.cache.Reset()
}

// Search ranks index items for query. A positive limit lowers the result cap.
// Results are cached per normalized query until the index is replaced.
func (s *Session) Search(query string, limit int) []fuzzy.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	key := normalize.Query(query)
	results, ok := s.cache.Get(key)
	if !ok {
		results = s.opts.Matcher.Search(query, s.idx)
		if s.idx != nil && key != "" {
			s.cache.Put(key, results)
		}
	}
	s.searchTime.UpdateSince(start)

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Complete lists names whose keys start with prefix.
func (s *Session) Complete(prefix string, limit int) []index.Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Complete(prefix, limit)
}

// Highlight marks every occurrence of name in the document, replacing earlier highlights.
func (s *Session) Highlight(name string) highlight.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report highlight.Report
	s.markTime.Time(func() {
		report = s.opts.Highlighter.Highlight(s.doc, s.doc.Root(), name)
	})
	return report
}

// Render writes the document with its current highlights.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Render(w)
}

// Stats reports index size and timer counts.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Builds:        s.buildTimer.Count(),
		Searches:      s.searchTime.Count(),
		Highlights:    s.markTime.Count(),
		MeanSearchUs:  s.searchTime.Mean() / float64(time.Microsecond),
		MeanNames:     s.names.Mean(),
		CachedQueries: s.cache.Len(),
		CacheHits:     s.cache.Hits(),
	}
	if s.idx != nil {
		st.Indexed = true
		st.Candidates = s.idx.Total
		st.Items = s.idx.Len()
		st.BuildMs = s.idx.ElapsedMs()
	}
	return st
}

// Metrics exposes the session registry, for dumping with metrics.WriteOnce.
func (s *Session) Metrics() metrics.Registry {
	return s.registry
}
