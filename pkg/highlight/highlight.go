// Package highlight marks every occurrence of a name on a rendering surface.
//
// Highlighting runs in two phases. FindMatches is read-only and works on a
// snapshot of segmented groups; Apply mutates the surface, processing matches
// from the highest offset down so a wrap never shifts the offsets of a match
// that has not been applied yet.
package highlight

import (
	"sort"
	"strings"

	"github.com/bastiangx/pinyinctrlf/pkg/segment"
	"github.com/charmbracelet/log"
)

// DefaultMaxMatches caps how many occurrences a single highlight pass marks.
const DefaultMaxMatches = 200

// Surface is the mutable side of a rendered document.
type Surface interface {
	// ClearHighlights unwraps every marker applied earlier and reports how many were removed.
	ClearHighlights() int
	// Wrap surrounds the range [start, end) with a highlight marker.
	Wrap(start, end segment.Position) error
	// ScrollIntoView brings p into view, centered.
	ScrollIntoView(p segment.Position)
}

// Match is one resolved occurrence.
type Match struct {
	Group  int // ordinal of the group in the scan
	Offset int // byte offset of the occurrence in the group text
	Start  segment.Position
	End    segment.Position
}

// Report summarizes a highlight pass.
type Report struct {
	Cleared int
	Found   int
	Applied int
	Skipped int
	First   *Match
}

// FindMatches locates literal, non-overlapping occurrences of name in every
// group, up to limit in total. Occurrences whose ends cannot be mapped back
// to text nodes are dropped.
func FindMatches(groups []*segment.Group, name string, limit int) []Match {
	if name == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultMaxMatches
	}

	var matches []Match
	seen := 0
	for gi, g := range groups {
		from := 0
		for {
			i := strings.Index(g.Text[from:], name)
			if i < 0 {
				break
			}
			offset := from + i
			from = offset + len(name)
			seen++

			start, okStart := g.Locate(offset)
			end, okEnd := g.Locate(offset + len(name))
			if okStart && okEnd {
				matches = append(matches, Match{Group: gi, Offset: offset, Start: start, End: end})
			} else {
				log.Debugf("dropping unresolvable range at %d in group %d", offset, gi)
			}

			if seen >= limit {
				return matches
			}
		}
	}
	return matches
}

// Apply wraps matches on surface from the highest offset down and scrolls
// to the first successfully wrapped match in document order.
// A match that cannot be wrapped is skipped; the rest still apply.
func Apply(surface Surface, matches []Match) Report {
	report := Report{Found: len(matches)}
	if len(matches) == 0 {
		return report
	}

	order := make([]int, len(matches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return matches[order[a]].Offset > matches[order[b]].Offset
	})

	applied := make([]bool, len(matches))
	for _, i := range order {
		m := matches[i]
		if err := surface.Wrap(m.Start, m.End); err != nil {
			log.Debugf("skipping match at %d in group %d: %v", m.Offset, m.Group, err)
			report.Skipped++
			continue
		}
		applied[i] = true
		report.Applied++
	}

	for i := range matches {
		if applied[i] {
			first := matches[i]
			report.First = &first
			surface.ScrollIntoView(first.Start)
			break
		}
	}
	return report
}

// Highlighter re-scans a live tree and marks occurrences of a name.
type Highlighter struct {
	MaxMatches int
}

// New creates a highlighter capped at maxMatches occurrences per pass.
func New(maxMatches int) *Highlighter {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	return &Highlighter{MaxMatches: maxMatches}
}

// Highlight clears previous markers, segments root as it is now and marks name.
func (h *Highlighter) Highlight(surface Surface, root segment.Node, name string) Report {
	cleared := surface.ClearHighlights()
	groups := segment.Segment(root)
	matches := FindMatches(groups, name, h.MaxMatches)
	report := Apply(surface, matches)
	report.Cleared = cleared

	log.Debugf("highlight %q: cleared=%d found=%d applied=%d skipped=%d",
		name, report.Cleared, report.Found, report.Applied, report.Skipped)
	return report
}
