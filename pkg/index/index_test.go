package index

import (
	"strings"
	"testing"

	"github.com/bastiangx/pinyinctrlf/pkg/candidate"
	"github.com/bastiangx/pinyinctrlf/pkg/romanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedProvider romanizes from a lookup table, one entry per name.
func fixedProvider(table map[string]string) romanize.Provider {
	return romanize.ProviderFunc(func(text string) []string {
		if s, ok := table[text]; ok {
			return strings.Fields(s)
		}
		return nil
	})
}

func countsOf(names ...string) *candidate.Counts {
	c := candidate.NewCounts()
	for _, n := range names {
		c.Add(n)
	}
	return c
}

func TestKeysFor(t *testing.T) {
	keys, display := KeysFor([]string{"zhang", "san"})
	assert.Equal(t, "zhang san", display)
	assert.ElementsMatch(t, []string{"zhangsan", "zhang san", "zs", "z s"}, keys)
}

func TestKeysForEmpty(t *testing.T) {
	keys, display := KeysFor(nil)
	assert.Empty(t, keys)
	assert.Equal(t, "", display)
}

func TestKeysForLowerCases(t *testing.T) {
	keys, _ := KeysFor([]string{"Lv", "Bu"})
	for _, k := range keys {
		assert.Equal(t, strings.ToLower(k), k)
	}
	assert.Contains(t, keys, "lvbu")
	assert.Contains(t, keys, "lübu")
	assert.Contains(t, keys, "lubu")
}

func TestExpandUmlaut(t *testing.T) {
	testCases := []struct {
		key      string
		expected []string
	}{
		{"nv", []string{"nv", "nü", "nu"}},
		{"nü", []string{"nü", "nv", "nu"}},
		{"zhang", []string{"zhang"}},
		{"lü v", []string{"lü v", "lv v", "lu v", "lü ü", "lü u"}},
	}

	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			got := ExpandUmlaut(tc.key)
			assert.Subset(t, got, tc.expected)
			assert.Contains(t, got, tc.key)
		})
	}
}

func TestBuild(t *testing.T) {
	counts := countsOf("张三", "李四", "张三", "女娲")
	idx := Build(counts, fixedProvider(map[string]string{
		"张三": "zhang san",
		"李四": "li si",
		"女娲": "nv wa",
	}))

	require.Equal(t, 3, idx.Len())
	assert.Equal(t, 3, idx.Total)
	assert.GreaterOrEqual(t, idx.ElapsedMs(), int64(0))

	first := idx.Items[0]
	assert.Equal(t, "张三", first.Name)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, "zhang san", first.Pinyin)

	nuwa := idx.Items[2]
	assert.Subset(t, nuwa.Keys, []string{"nvwa", "nüwa", "nuwa", "nw", "n w"})
}

func TestBuildWithoutProvider(t *testing.T) {
	idx := Build(countsOf("张三"), nil)
	require.Equal(t, 1, idx.Len())
	assert.Empty(t, idx.Items[0].Keys)
	assert.Equal(t, 1, idx.Items[0].Count)
	assert.Empty(t, idx.Complete("z", 5))
}

func TestComplete(t *testing.T) {
	counts := countsOf("张三", "赵四", "赵四", "王五", "张三丰")
	idx := Build(counts, fixedProvider(map[string]string{
		"张三":  "zhang san",
		"赵四":  "zhao si",
		"王五":  "wang wu",
		"张三丰": "zhang san feng",
	}))

	got := idx.Complete("zh", 10)
	require.Len(t, got, 3)
	assert.Equal(t, "赵四", got[0].Name)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "张三", got[1].Name)
	assert.Equal(t, "张三丰", got[2].Name)

	got = idx.Complete("zhang san", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "张三", got[0].Name)
	assert.Equal(t, "zhangsan", got[0].Key)

	assert.Empty(t, idx.Complete("xyz", 10))
	assert.Empty(t, idx.Complete("123", 10))

	var nilIndex *Index
	assert.Empty(t, nilIndex.Complete("z", 10))
}
