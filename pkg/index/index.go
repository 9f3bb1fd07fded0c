// Package index builds the in-memory name index: one item per candidate name
// with its romanized key forms, plus a prefix trie over the normalized keys.
package index

import (
	"strings"
	"time"

	"github.com/bastiangx/pinyinctrlf/pkg/candidate"
	"github.com/bastiangx/pinyinctrlf/pkg/normalize"
	"github.com/bastiangx/pinyinctrlf/pkg/romanize"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Item is one indexed candidate name.
type Item struct {
	Name   string
	Count  int
	Pinyin string   // space-joined syllables, for display
	Keys   []string // unique, lower-cased; empty when no syllable was resolvable
}

// Index is the full set of items built from one scan.
type Index struct {
	Items   []*Item
	Total   int
	Elapsed time.Duration

	trie *patricia.Trie
}

// ElapsedMs is the build duration in milliseconds.
func (idx *Index) ElapsedMs() int64 {
	return idx.Elapsed.Milliseconds()
}

// Len is the number of items.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Items)
}

// Build romanizes every candidate in counts and derives its keys.
// A nil provider yields items without keys.
func Build(counts *candidate.Counts, provider romanize.Provider) *Index {
	start := time.Now()
	if provider == nil {
		log.Warn("No romanization provider, names will be indexed without keys")
	}

	idx := &Index{
		Items: make([]*Item, 0, counts.Len()),
		Total: counts.Len(),
		trie:  patricia.NewTrie(),
	}

	counts.Each(func(name string, count int) {
		syllables := romanize.Syllables(provider, name)
		keys, display := KeysFor(syllables)
		item := &Item{
			Name:   name,
			Count:  count,
			Pinyin: display,
			Keys:   keys,
		}
		idx.insert(len(idx.Items), item)
		idx.Items = append(idx.Items, item)
	})

	idx.Elapsed = time.Since(start)
	log.Debugf("Indexed %d candidates in %v", idx.Total, idx.Elapsed)
	return idx
}

// KeysFor derives the expanded key set and the display pinyin from syllables.
// The four raw forms are full, spaced, initials and spaced initials.
func KeysFor(syllables []string) ([]string, string) {
	initials := make([]string, len(syllables))
	for i, s := range syllables {
		if s != "" {
			r := []rune(s)
			initials[i] = string(r[0])
		}
	}

	spaced := strings.Join(syllables, " ")
	raw := []string{
		strings.Join(syllables, ""),
		spaced,
		strings.Join(initials, ""),
		strings.Join(initials, " "),
	}

	var keys []string
	seen := make(map[string]bool)
	for _, key := range raw {
		if key == "" {
			continue
		}
		for _, variant := range ExpandUmlaut(key) {
			variant = strings.ToLower(variant)
			if !seen[variant] {
				seen[variant] = true
				keys = append(keys, variant)
			}
		}
	}
	return keys, spaced
}

// ExpandUmlaut adds the ü/v/u spelling variants of key.
// Both rules apply to the original key; the result always contains key.
func ExpandUmlaut(key string) []string {
	variants := []string{key}
	add := func(s string) {
		for _, v := range variants {
			if v == s {
				return
			}
		}
		variants = append(variants, s)
	}

	if strings.Contains(key, "ü") {
		add(strings.ReplaceAll(key, "ü", "v"))
		add(strings.ReplaceAll(key, "ü", "u"))
	}
	if strings.Contains(key, "v") {
		add(strings.ReplaceAll(key, "v", "ü"))
		add(strings.ReplaceAll(key, "v", "u"))
	}
	return variants
}

// insert registers the normalized keys of item at position pos in the trie.
func (idx *Index) insert(pos int, item *Item) {
	for _, key := range item.Keys {
		norm := normalize.Query(key)
		if norm == "" {
			continue
		}
		prefix := patricia.Prefix(norm)
		positions, _ := idx.trie.Get(prefix).([]int)
		if n := len(positions); n > 0 && positions[n-1] == pos {
			continue
		}
		idx.trie.Set(prefix, append(positions, pos))
	}
}
