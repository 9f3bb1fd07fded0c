package segment

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Chunk is one text node's contribution to a group.
type Chunk struct {
	Node  Node
	Start int // byte offset of the chunk inside Group.Text
	Text  string
}

// Group is a contiguous logical block of rendered text.
// Chunks are ordered by Start and Text is their exact concatenation.
type Group struct {
	Container Node
	Text      string
	Chunks    []Chunk
}

// Position addresses a byte offset inside a single text node.
type Position struct {
	Node   Node
	Offset int
}

// Segment walks every text node under root in document order and returns
// the groups they belong to, in order of first encounter.
// A tree without visible text yields no groups.
func Segment(root Node) []*Group {
	if root == nil {
		return nil
	}

	var groups []*Group
	byContainer := make(map[Node]*Group)
	texts := 0

	walk(root, func(n Node) {
		if !n.IsText() {
			return
		}
		text := n.Text()
		if strings.TrimSpace(text) == "" {
			return
		}
		parent := n.Parent()
		if parent == nil || parent.Role() == RoleHidden {
			return
		}

		container := containerOf(parent)
		g, ok := byContainer[container]
		if !ok {
			g = &Group{Container: container}
			byContainer[container] = g
			groups = append(groups, g)
		}
		g.Chunks = append(g.Chunks, Chunk{Node: n, Start: len(g.Text), Text: text})
		g.Text += text
		texts++
	})

	log.Debugf("segmented %d text nodes into %d groups", texts, len(groups))
	return groups
}

// walk is a depth-first, pre-order traversal.
func walk(root Node, visit func(Node)) {
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)

		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// containerOf picks the group key for a text node whose parent is el:
// the closest text layer, else the closest block, else el itself.
func containerOf(el Node) Node {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.Role() == RoleTextLayer {
			return cur
		}
	}
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.Role() == RoleBlock {
			return cur
		}
	}
	return el
}

// Locate maps a byte offset in g.Text back to a text node position.
// Chunks are scanned from the end so an offset sitting exactly on a chunk
// boundary resolves to the start of the later chunk.
func (g *Group) Locate(index int) (Position, bool) {
	if index < 0 || index > len(g.Text) {
		return Position{}, false
	}
	for i := len(g.Chunks) - 1; i >= 0; i-- {
		c := g.Chunks[i]
		if index >= c.Start {
			return Position{Node: c.Node, Offset: index - c.Start}, true
		}
	}
	return Position{}, false
}

// ChunkOf returns the chunk holding node, if any.
func (g *Group) ChunkOf(n Node) (Chunk, bool) {
	for _, c := range g.Chunks {
		if c.Node == n {
			return c, true
		}
	}
	return Chunk{}, false
}
