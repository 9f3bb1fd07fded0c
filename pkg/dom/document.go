// Package dom adapts a parsed HTML document to the segmenter and highlighter.
//
// The document is read with golang.org/x/net/html. Text nodes are exposed
// through segment.Node and highlights are applied by splitting text nodes and
// wrapping the matched range in a marker span.
package dom

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bastiangx/pinyinctrlf/pkg/highlight"
	"github.com/bastiangx/pinyinctrlf/pkg/segment"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MarkerClass is the class carried by every highlight span.
	MarkerClass = "pinyinctrlf-hit"
	// ScrollAttr marks the element the viewer should scroll to.
	ScrollAttr = "data-pinyinctrlf-scroll"
	// ScrollAnchor is the id given to the scroll target.
	ScrollAnchor = "pinyinctrlf-first"
	// DefaultTextLayerClass is the class of rendered page text layers.
	DefaultTextLayerClass = "textLayer"
)

var (
	// ErrWrap is returned when a range cannot be wrapped in a single marker.
	ErrWrap = errors.New("range cannot be wrapped")
	// ErrStaleRange is returned for positions that no longer address live text.
	ErrStaleRange = errors.New("stale range")
)

var _ highlight.Surface = (*Document)(nil)

// Document is a mutable HTML tree.
type Document struct {
	// TextLayerClass marks elements whose whole subtree forms one group.
	TextLayerClass string

	root    *html.Node
	markers map[segment.Position]*html.Node
	scroll  *html.Node
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{
		TextLayerClass: DefaultTextLayerClass,
		root:           root,
		markers:        make(map[segment.Position]*html.Node),
	}, nil
}

// ParseFile reads the HTML document at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("loaded page %s", path)
	return doc, nil
}

// Root returns the body element, or the document node when there is none.
func (d *Document) Root() segment.Node {
	if body := find(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	}); body != nil {
		return node{d, body}
	}
	return node{d, d.root}
}

// Render writes the document, highlights included.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}

// Highlighted returns the text of every marker in document order.
func (d *Document) Highlighted() []string {
	var out []string
	for _, m := range d.findMarkers() {
		out = append(out, textOf(m))
	}
	return out
}

// ClearHighlights unwraps every marker in place and merges the text nodes it leaves behind.
func (d *Document) ClearHighlights() int {
	markers := d.findMarkers()
	for _, m := range markers {
		parent := m.Parent
		for c := m.FirstChild; c != nil; c = m.FirstChild {
			m.RemoveChild(c)
			parent.InsertBefore(c, m)
		}
		parent.RemoveChild(m)
		mergeText(parent)
	}

	clear(d.markers)
	d.scroll = nil
	if len(markers) > 0 {
		log.Debugf("cleared %d highlights", len(markers))
	}
	return len(markers)
}

// Wrap surrounds [start, end) with a marker span.
//
// The node holding start keeps the text before the range, so positions at
// lower offsets in the same node stay valid. Both ends must live in text
// nodes under the same parent.
func (d *Document) Wrap(start, end segment.Position) error {
	s, err := d.textAt(start)
	if err != nil {
		return err
	}
	e, err := d.textAt(end)
	if err != nil {
		return err
	}
	if s.Parent != e.Parent {
		return fmt.Errorf("%w: range spans different parents", ErrWrap)
	}

	marker := newMarker()
	if s == e {
		if start.Offset >= end.Offset {
			return fmt.Errorf("%w: empty range %d-%d", ErrWrap, start.Offset, end.Offset)
		}
		mid := splitText(s, start.Offset)
		splitText(mid, end.Offset-start.Offset)
		s.Parent.InsertBefore(marker, mid)
		s.Parent.RemoveChild(mid)
		marker.AppendChild(mid)
		d.markers[start] = marker
		return nil
	}

	if !follows(s, e) {
		return fmt.Errorf("%w: range end precedes its start", ErrWrap)
	}
	first := splitText(s, start.Offset)
	splitText(e, end.Offset)

	parent := s.Parent
	parent.InsertBefore(marker, first)
	for cur := first; cur != nil; {
		next := cur.NextSibling
		parent.RemoveChild(cur)
		marker.AppendChild(cur)
		if cur == e {
			break
		}
		cur = next
	}
	d.markers[start] = marker
	return nil
}

// ScrollIntoView records p as the scroll target.
// The marker wrapping p carries the anchor; otherwise the enclosing element does.
func (d *Document) ScrollIntoView(p segment.Position) {
	target, ok := d.markers[p]
	if !ok {
		n, err := d.textAt(p)
		if err != nil {
			log.Debugf("no scroll target: %v", err)
			return
		}
		target = n.Parent
	}

	if d.scroll != nil {
		removeAttr(d.scroll, ScrollAttr)
		removeAttr(d.scroll, "id")
	}
	setAttr(target, "id", ScrollAnchor)
	setAttr(target, ScrollAttr, "center smooth")
	d.scroll = target
}

// textAt resolves p to a live text node of this document.
func (d *Document) textAt(p segment.Position) (*html.Node, error) {
	x, ok := p.Node.(node)
	if !ok || x.doc != d || x.n == nil {
		return nil, fmt.Errorf("%w: foreign node", ErrStaleRange)
	}
	if x.n.Type != html.TextNode {
		return nil, fmt.Errorf("%w: not a text node", ErrStaleRange)
	}
	if p.Offset < 0 || p.Offset > len(x.n.Data) {
		return nil, fmt.Errorf("%w: offset %d outside %d bytes", ErrStaleRange, p.Offset, len(x.n.Data))
	}
	if !d.attached(x.n) {
		return nil, fmt.Errorf("%w: detached node", ErrStaleRange)
	}
	return x.n, nil
}

func (d *Document) attached(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

func (d *Document) findMarkers() []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Span && hasClass(n, MarkerClass) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(d.root)
	return out
}

func newMarker() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: MarkerClass}},
	}
}

// splitText cuts n at off. n keeps the prefix; the suffix becomes a new
// sibling right after n, which is returned.
func splitText(n *html.Node, off int) *html.Node {
	suffix := &html.Node{Type: html.TextNode, Data: n.Data[off:]}
	n.Data = n.Data[:off]
	n.Parent.InsertBefore(suffix, n.NextSibling)
	return suffix
}

// mergeText joins adjacent text children of parent and drops empty ones.
func mergeText(parent *html.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.TextNode {
			c = next
			continue
		}
		for next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			after := next.NextSibling
			parent.RemoveChild(next)
			next = after
		}
		if c.Data == "" {
			parent.RemoveChild(c)
		}
		c = next
	}
}

func follows(a, b *html.Node) bool {
	for cur := a.NextSibling; cur != nil; cur = cur.NextSibling {
		if cur == b {
			return true
		}
	}
	return false
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var out string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out += textOf(c)
	}
	return out
}
