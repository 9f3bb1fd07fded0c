// Package normalize folds pinyin queries and keys into the a-z matching alphabet.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Query lower-cases s, spells ü (toned or not) as "v", drops tone marks and
// keeps only the letters a-z. Whitespace, hyphens, digits and everything else
// are removed.
//
//	"Zhāng"      -> "zhang"
//	"zh-ang 123" -> "zhang"
//	"Lǚ"         -> "lv"
func Query(s string) string {
	if s == "" {
		return ""
	}

	decomposed := norm.NFD.String(strings.ToLower(s))
	// NFD spells ü as u + U+0308, ahead of any tone mark.
	decomposed = strings.ReplaceAll(decomposed, "u\u0308", "v")

	stripped, _, err := transform.String(runes.Remove(runes.In(unicode.Mn)), decomposed)
	if err != nil {
		stripped = decomposed
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for i := 0; i < len(stripped); i++ {
		c := stripped[i]
		if c >= 'a' && c <= 'z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
