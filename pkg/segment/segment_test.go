package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	text     string
	isText   bool
	role     Role
	parent   *fakeNode
	children []*fakeNode
}

func (f *fakeNode) IsText() bool { return f.isText }
func (f *fakeNode) Text() string { return f.text }
func (f *fakeNode) Role() Role   { return f.role }

func (f *fakeNode) Parent() Node {
	if f.parent == nil {
		return nil
	}
	return f.parent
}

func (f *fakeNode) Children() []Node {
	out := make([]Node, len(f.children))
	for i, c := range f.children {
		out[i] = c
	}
	return out
}

func el(role Role, children ...*fakeNode) *fakeNode {
	n := &fakeNode{role: role}
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func txt(s string) *fakeNode {
	return &fakeNode{text: s, isText: true}
}

func TestSegmentEmptyDocuments(t *testing.T) {
	assert.Empty(t, Segment(nil))
	assert.Empty(t, Segment(el(RoleBlock)))
	assert.Empty(t, Segment(el(RoleBlock, txt("   "), el(RoleInline, txt("\n\t")), txt("　"))))
}

func TestSegmentGroupsByBlock(t *testing.T) {
	p1 := el(RoleBlock, txt("张三"), el(RoleInline, txt("和")), txt("李四"))
	p2 := el(RoleBlock, txt("王五"))
	root := el(RoleBlock, p1, p2)

	groups := Segment(root)
	require.Len(t, groups, 2)

	assert.Equal(t, "张三和李四", groups[0].Text)
	assert.Same(t, p1, groups[0].Container.(*fakeNode))
	require.Len(t, groups[0].Chunks, 3)
	assert.Equal(t, 0, groups[0].Chunks[0].Start)
	assert.Equal(t, len("张三"), groups[0].Chunks[1].Start)
	assert.Equal(t, len("张三和"), groups[0].Chunks[2].Start)

	assert.Equal(t, "王五", groups[1].Text)
}

func TestSegmentSkipsHiddenParents(t *testing.T) {
	root := el(RoleBlock,
		el(RoleHidden, txt("var 张三 = 1")),
		el(RoleBlock, txt("李四")),
	)
	groups := Segment(root)
	require.Len(t, groups, 1)
	assert.Equal(t, "李四", groups[0].Text)
}

func TestSegmentTextLayerWinsOverBlocks(t *testing.T) {
	layer := el(RoleTextLayer,
		el(RoleBlock, txt("张")),
		el(RoleBlock, txt("三")),
	)
	page := el(RoleBlock, el(RoleInline), layer)
	root := el(RoleBlock, page)

	groups := Segment(root)
	require.Len(t, groups, 1)
	assert.Equal(t, "张三", groups[0].Text)
	assert.Same(t, layer, groups[0].Container.(*fakeNode))
}

func TestSegmentFallsBackToParent(t *testing.T) {
	span := el(RoleInline, txt("赵六"))
	root := el(RoleInline, span)

	groups := Segment(root)
	require.Len(t, groups, 1)
	assert.Same(t, span, groups[0].Container.(*fakeNode))
}

func TestLocateRoundTrip(t *testing.T) {
	root := el(RoleBlock,
		el(RoleBlock, txt("ab"), txt("张三"), el(RoleInline, txt("c")), txt("李四de")),
		el(RoleBlock, txt("x")),
	)

	for _, g := range Segment(root) {
		for i := 0; i <= len(g.Text); i++ {
			pos, ok := g.Locate(i)
			require.True(t, ok, "offset %d", i)
			chunk, found := g.ChunkOf(pos.Node)
			require.True(t, found)
			assert.Equal(t, i, chunk.Start+pos.Offset)
		}
	}
}

func TestLocateBoundaryPrefersLaterChunk(t *testing.T) {
	a, b := txt("ab"), txt("cd")
	groups := Segment(el(RoleBlock, a, b))
	require.Len(t, groups, 1)

	pos, ok := groups[0].Locate(2)
	require.True(t, ok)
	assert.Same(t, b, pos.Node.(*fakeNode))
	assert.Equal(t, 0, pos.Offset)
}

func TestLocateOutOfRange(t *testing.T) {
	groups := Segment(el(RoleBlock, txt("ab")))
	require.Len(t, groups, 1)

	_, ok := groups[0].Locate(-1)
	assert.False(t, ok)
	_, ok = groups[0].Locate(3)
	assert.False(t, ok)

	empty := &Group{}
	_, ok = empty.Locate(0)
	assert.False(t, ok)
}
