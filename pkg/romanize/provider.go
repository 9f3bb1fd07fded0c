// Package romanize turns Chinese text into toneless pinyin syllables.
package romanize

import (
	"unicode/utf8"

	"github.com/bastiangx/pinyinctrlf/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/mozillazg/go-pinyin"
)

// Provider returns one toneless syllable per resolvable character of text.
type Provider interface {
	Romanize(text string) []string
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(text string) []string

// Romanize calls f.
func (f ProviderFunc) Romanize(text string) []string {
	return f(text)
}

// Syllables romanizes text with p, treating a nil provider as unavailable.
func Syllables(p Provider, text string) []string {
	if p == nil {
		return nil
	}
	return p.Romanize(text)
}

// Pinyin romanizes with go-pinyin and applies surname readings to the first character.
type Pinyin struct {
	args      pinyin.Args
	surnames  dictionary.Overrides
	overrides int
}

// NewPinyin creates a provider with the given surname overrides (nil for none).
func NewPinyin(surnames dictionary.Overrides) *Pinyin {
	args := pinyin.NewArgs()
	args.Style = pinyin.Normal
	args.Heteronym = false
	args.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{}
	}
	return &Pinyin{
		args:     args,
		surnames: surnames,
	}
}

// Romanize implements Provider.
func (p *Pinyin) Romanize(text string) []string {
	syllables := pinyin.LazyPinyin(text, p.args)
	if len(syllables) == 0 || len(p.surnames) == 0 {
		return syllables
	}

	first, _ := utf8.DecodeRuneInString(text)
	if reading, ok := p.surnames[first]; ok && syllables[0] != reading {
		log.Debugf("surname override for %q: %s -> %s", text, syllables[0], reading)
		syllables[0] = reading
		p.overrides++
	}
	return syllables
}

// Overridden reports how many times a surname reading was applied.
func (p *Pinyin) Overridden() int {
	return p.overrides
}
