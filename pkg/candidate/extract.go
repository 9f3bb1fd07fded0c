// Package candidate finds Chinese-name-shaped substrings in segmented text.
package candidate

import (
	"fmt"
	"regexp"

	"github.com/bastiangx/pinyinctrlf/pkg/segment"
	"github.com/charmbracelet/log"
)

// Default bounds for a name candidate, in ideographs.
const (
	DefaultMinLen = 2
	DefaultMaxLen = 4
	// MaxBound is the largest repeat count regexp accepts.
	MaxBound = 1000
)

// Counts maps each candidate to its number of occurrences.
// Iteration follows first-seen order.
type Counts struct {
	order  []string
	counts map[string]int
}

// NewCounts creates an empty Counts.
func NewCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

// Add increments name by one.
func (c *Counts) Add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// Get returns the occurrence count of name, 0 if unseen.
func (c *Counts) Get(name string) int {
	return c.counts[name]
}

// Len is the number of unique candidates.
func (c *Counts) Len() int {
	return len(c.order)
}

// Names returns the candidates in first-seen order.
func (c *Counts) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Each calls fn for every candidate in first-seen order.
func (c *Counts) Each(fn func(name string, count int)) {
	for _, name := range c.order {
		fn(name, c.counts[name])
	}
}

// Extractor scans text for runs of CJK Unified Ideographs.
type Extractor struct {
	re *regexp.Regexp
}

// NewExtractor builds an extractor for runs of minLen..maxLen ideographs.
// Out-of-range bounds fall back to the defaults.
func NewExtractor(minLen, maxLen int) *Extractor {
	if minLen < 1 || maxLen < minLen || maxLen > MaxBound {
		log.Warnf("invalid candidate bounds [%d,%d], using [%d,%d]", minLen, maxLen, DefaultMinLen, DefaultMaxLen)
		minLen, maxLen = DefaultMinLen, DefaultMaxLen
	}
	return &Extractor{
		re: regexp.MustCompile(fmt.Sprintf(`[\x{4e00}-\x{9fff}]{%d,%d}`, minLen, maxLen)),
	}
}

// Extract counts candidates across all groups.
// Matches are greedy and non-overlapping, scanned left to right.
func (e *Extractor) Extract(groups []*segment.Group) *Counts {
	counts := NewCounts()
	for _, g := range groups {
		e.scan(g.Text, counts)
	}
	return counts
}

// ExtractText counts candidates in a single string.
func (e *Extractor) ExtractText(text string) *Counts {
	counts := NewCounts()
	e.scan(text, counts)
	return counts
}

func (e *Extractor) scan(text string, counts *Counts) {
	for _, name := range e.re.FindAllString(text, -1) {
		counts.Add(name)
	}
}

var defaultExtractor = NewExtractor(DefaultMinLen, DefaultMaxLen)

// Extract counts 2 to 4 ideograph candidates across all groups.
func Extract(groups []*segment.Group) *Counts {
	return defaultExtractor.Extract(groups)
}
