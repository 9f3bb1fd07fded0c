package highlight

import (
	"errors"
	"strings"
	"testing"

	"github.com/bastiangx/pinyinctrlf/pkg/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textNode struct{ text string }

func (n *textNode) IsText() bool             { return true }
func (n *textNode) Text() string             { return n.text }
func (n *textNode) Parent() segment.Node     { return nil }
func (n *textNode) Children() []segment.Node { return nil }
func (n *textNode) Role() segment.Role       { return segment.RoleInline }

// group builds a group out of chunks without going through a tree.
func group(parts ...string) *segment.Group {
	g := &segment.Group{}
	for _, p := range parts {
		g.Chunks = append(g.Chunks, segment.Chunk{Node: &textNode{p}, Start: len(g.Text), Text: p})
		g.Text += p
	}
	return g
}

type wrapCall struct {
	start, end segment.Position
}

type fakeSurface struct {
	wraps    []wrapCall
	failAt   map[segment.Node]bool
	scrolled []segment.Position
	cleared  int
}

func (s *fakeSurface) ClearHighlights() int {
	n := len(s.wraps)
	s.cleared += n
	s.wraps = nil
	return n
}

func (s *fakeSurface) Wrap(start, end segment.Position) error {
	if s.failAt[start.Node] {
		return errors.New("cannot wrap")
	}
	s.wraps = append(s.wraps, wrapCall{start, end})
	return nil
}

func (s *fakeSurface) ScrollIntoView(p segment.Position) {
	s.scrolled = append(s.scrolled, p)
}

func TestFindMatches(t *testing.T) {
	g := group("张三和", "张三说")
	matches := FindMatches([]*segment.Group{g}, "张三", 0)
	require.Len(t, matches, 2)

	assert.Equal(t, 0, matches[0].Offset)
	assert.Equal(t, 0, matches[0].Start.Offset)
	assert.Same(t, g.Chunks[0].Node, matches[0].Start.Node)

	second := len("张三和")
	assert.Equal(t, second, matches[1].Offset)
	assert.Same(t, g.Chunks[1].Node, matches[1].Start.Node)
	assert.Equal(t, len("张三"), matches[1].End.Offset)
}

func TestFindMatchesNonOverlapping(t *testing.T) {
	matches := FindMatches([]*segment.Group{group("aaaa")}, "aa", 0)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Offset)
	assert.Equal(t, 2, matches[1].Offset)
}

func TestFindMatchesAcrossChunks(t *testing.T) {
	g := group("x张", "三y")
	matches := FindMatches([]*segment.Group{g}, "张三", 0)
	require.Len(t, matches, 1)
	assert.Same(t, g.Chunks[0].Node, matches[0].Start.Node)
	assert.Same(t, g.Chunks[1].Node, matches[0].End.Node)
	assert.Equal(t, len("三"), matches[0].End.Offset)
}

func TestFindMatchesCap(t *testing.T) {
	g1 := group(strings.Repeat("李四", 150))
	g2 := group(strings.Repeat("李四", 150))
	matches := FindMatches([]*segment.Group{g1, g2}, "李四", 0)
	assert.Len(t, matches, DefaultMaxMatches)
	assert.Equal(t, 1, matches[len(matches)-1].Group)

	assert.Len(t, FindMatches([]*segment.Group{g1}, "李四", 5), 5)
}

func TestFindMatchesEmpty(t *testing.T) {
	assert.Empty(t, FindMatches([]*segment.Group{group("张三")}, "", 0))
	assert.Empty(t, FindMatches([]*segment.Group{group("张三")}, "李四", 0))
	assert.Empty(t, FindMatches(nil, "李四", 0))
}

func TestFindMatchesDropsUnresolvable(t *testing.T) {
	// a group whose text outgrew its chunks, as after a stale scan
	g := &segment.Group{Text: "张三"}
	assert.Empty(t, FindMatches([]*segment.Group{g}, "张三", 0))
}

func TestApplyDescendingAndScrollFirst(t *testing.T) {
	g := group("张三和张三")
	matches := FindMatches([]*segment.Group{g}, "张三", 0)
	require.Len(t, matches, 2)

	surface := &fakeSurface{}
	report := Apply(surface, matches)

	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, surface.wraps, 2)
	assert.Greater(t, surface.wraps[0].start.Offset, surface.wraps[1].start.Offset)

	require.Len(t, surface.scrolled, 1)
	assert.Equal(t, 0, surface.scrolled[0].Offset)
	require.NotNil(t, report.First)
	assert.Equal(t, 0, report.First.Offset)
}

func TestApplySkipsWrapFailures(t *testing.T) {
	g := group("张三", "和", "张三")
	matches := FindMatches([]*segment.Group{g}, "张三", 0)
	require.Len(t, matches, 2)

	surface := &fakeSurface{failAt: map[segment.Node]bool{g.Chunks[0].Node: true}}
	report := Apply(surface, matches)

	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, surface.scrolled, 1)
	assert.Same(t, g.Chunks[2].Node, surface.scrolled[0].Node)
}

func TestApplyNothing(t *testing.T) {
	surface := &fakeSurface{}
	report := Apply(surface, nil)
	assert.Zero(t, report.Applied)
	assert.Nil(t, report.First)
	assert.Empty(t, surface.scrolled)
}
