package candidate

import (
	"testing"

	"github.com/bastiangx/pinyinctrlf/pkg/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groups(texts ...string) []*segment.Group {
	out := make([]*segment.Group, len(texts))
	for i, t := range texts {
		out[i] = &segment.Group{Text: t}
	}
	return out
}

func TestExtractRuns(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want map[string]int
	}{
		{"single char is not a name", "张 三", map[string]int{}},
		{"two chars", "张三", map[string]int{"张三": 1}},
		{"four chars", "欧阳明月", map[string]int{"欧阳明月": 1}},
		{"five chars greedy then leftover dropped", "一二三四五", map[string]int{"一二三四": 1}},
		{"six chars split four plus two", "一二三四五六", map[string]int{"一二三四": 1, "五六": 1}},
		{"latin breaks runs", "张三abc李四", map[string]int{"张三": 1, "李四": 1}},
		{"punctuation breaks runs", "张三，张三。", map[string]int{"张三": 2}},
		{"outside the unified block", "㐀㐁", map[string]int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := make(map[string]int)
			Extract(groups(tc.text)).Each(func(name string, count int) {
				got[name] = count
			})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractCountsAcrossGroups(t *testing.T) {
	// "李四和张三" is five ideographs: the greedy match takes four, the last one is too short.
	counts := Extract(groups("张三说", "李四和张三", "张三 说"))

	assert.Equal(t, 3, counts.Len())
	assert.Equal(t, []string{"张三说", "李四和张", "张三"}, counts.Names())
	assert.Equal(t, 1, counts.Get("张三说"))
	assert.Equal(t, 1, counts.Get("李四和张"))
	assert.Equal(t, 1, counts.Get("张三"))
	assert.Equal(t, 0, counts.Get("王五"))
}

func TestExtractKeepsFirstSeenOrder(t *testing.T) {
	counts := Extract(groups("李四", "张三", "李四"))
	assert.Equal(t, []string{"李四", "张三"}, counts.Names())
	assert.Equal(t, 2, counts.Get("李四"))
}

func TestExtractIsIdempotent(t *testing.T) {
	g := groups("张三和李四，张三", "王五")
	first := Extract(g)
	second := Extract(g)
	assert.Equal(t, first.Names(), second.Names())
	for _, name := range first.Names() {
		assert.Equal(t, first.Get(name), second.Get(name))
	}
}

func TestNewExtractorBounds(t *testing.T) {
	e := NewExtractor(3, 3)
	assert.Equal(t, []string{"欧阳明"}, e.ExtractText("欧阳明月 张三").Names())

	fallback := NewExtractor(0, -1)
	assert.Equal(t, []string{"张三"}, fallback.ExtractText("张三").Names())

	var tooLong *Extractor
	require.NotPanics(t, func() { tooLong = NewExtractor(2, 2000) })
	assert.Equal(t, []string{"欧阳明月", "张三"}, tooLong.ExtractText("欧阳明月张三").Names())

	widest := NewExtractor(1, MaxBound)
	assert.Equal(t, []string{"欧阳明月张三"}, widest.ExtractText("欧阳明月张三").Names())
}
