package dom

import (
	"strings"

	"github.com/bastiangx/pinyinctrlf/pkg/segment"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var hiddenTags = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

var blockTags = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Body:       true,
	atom.Caption:    true,
	atom.Dd:         true,
	atom.Details:    true,
	atom.Dialog:     true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Fieldset:   true,
	atom.Figcaption: true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Html:       true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Nav:        true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Td:         true,
	atom.Tfoot:      true,
	atom.Th:         true,
	atom.Thead:      true,
	atom.Tr:         true,
	atom.Ul:         true,
}

// node exposes an *html.Node as a segment.Node.
// It is a small value type, so two wrappers of the same html node compare equal.
type node struct {
	doc *Document
	n   *html.Node
}

func (x node) IsText() bool { return x.n.Type == html.TextNode }

func (x node) Text() string {
	if x.n.Type != html.TextNode {
		return ""
	}
	return x.n.Data
}

func (x node) Parent() segment.Node {
	if x.n.Parent == nil {
		return nil
	}
	return node{x.doc, x.n.Parent}
}

func (x node) Children() []segment.Node {
	var out []segment.Node
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, node{x.doc, c})
	}
	return out
}

func (x node) Role() segment.Role {
	switch x.n.Type {
	case html.DocumentNode:
		return segment.RoleBlock
	case html.ElementNode:
	default:
		return segment.RoleInline
	}

	switch {
	case hiddenTags[x.n.DataAtom]:
		return segment.RoleHidden
	case hasClass(x.n, x.doc.TextLayerClass):
		return segment.RoleTextLayer
	case blockTags[x.n.DataAtom]:
		return segment.RoleBlock
	}
	return segment.RoleInline
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
