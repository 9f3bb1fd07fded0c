package romanize

import (
	"testing"

	"github.com/bastiangx/pinyinctrlf/pkg/dictionary"
	"github.com/stretchr/testify/assert"
)

func TestPinyinBasic(t *testing.T) {
	p := NewPinyin(nil)
	assert.Equal(t, []string{"zhang", "san"}, p.Romanize("张三"))
	assert.Equal(t, []string{"li", "si"}, p.Romanize("李四"))
}

func TestPinyinSkipsNonHanzi(t *testing.T) {
	p := NewPinyin(nil)
	assert.Equal(t, []string{"wang"}, p.Romanize("王abc"))
	assert.Empty(t, p.Romanize("abc"))
}

func TestPinyinSurnameOverride(t *testing.T) {
	p := NewPinyin(dictionary.Overrides{'单': "shan"})

	got := p.Romanize("单田芳")
	assert.Equal(t, "shan", got[0])
	assert.Len(t, got, 3)
	assert.Equal(t, 1, p.Overridden())

	// only the first character is a surname
	got = p.Romanize("简单")
	assert.Equal(t, "dan", got[1])
	assert.Equal(t, 1, p.Overridden())
}

func TestSyllablesNilProvider(t *testing.T) {
	assert.Nil(t, Syllables(nil, "张三"))

	var fixed Provider = ProviderFunc(func(string) []string { return []string{"a"} })
	assert.Equal(t, []string{"a"}, Syllables(fixed, "x"))
}
