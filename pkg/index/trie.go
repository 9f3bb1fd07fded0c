package index

import (
	"sort"

	"github.com/bastiangx/pinyinctrlf/pkg/normalize"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Completion is one name whose key starts with the completed prefix.
type Completion struct {
	Name   string
	Key    string // shortest matching normalized key
	Pinyin string
	Count  int
}

// Complete returns up to limit distinct names with a normalized key starting
// with prefix, most frequent first. Ties keep index order.
func (idx *Index) Complete(prefix string, limit int) []Completion {
	if idx == nil || idx.trie == nil {
		return []Completion{}
	}
	lowerPrefix := normalize.Query(prefix)
	if lowerPrefix == "" {
		return []Completion{}
	}

	best := make(map[int]string)
	err := idx.trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		key := string(p)
		positions, ok := item.([]int)
		if !ok {
			log.Errorf("Unknown item type: %T for key %s", item, key)
			return nil
		}
		for _, pos := range positions {
			if cur, seen := best[pos]; !seen || shorterKey(key, cur) {
				best[pos] = key
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return []Completion{}
	}

	positions := make([]int, 0, len(best))
	for pos := range best {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		a, b := idx.Items[positions[i]], idx.Items[positions[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return positions[i] < positions[j]
	})

	if limit > 0 && len(positions) > limit {
		positions = positions[:limit]
	}

	completions := make([]Completion, len(positions))
	for i, pos := range positions {
		item := idx.Items[pos]
		completions[i] = Completion{
			Name:   item.Name,
			Key:    best[pos],
			Pinyin: item.Pinyin,
			Count:  item.Count,
		}
	}
	return completions
}

func shorterKey(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
