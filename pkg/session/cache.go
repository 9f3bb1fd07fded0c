package session

import (
	"math"
	"sync"

	"github.com/bastiangx/pinyinctrlf/pkg/fuzzy"
	"github.com/charmbracelet/log"
)

// DefaultCacheSize is how many normalized queries keep their ranked results.
const DefaultCacheSize = 128

// QueryCache remembers ranked results per normalized query and evicts the
// least recently used entry when full. It is only valid for one index.
type QueryCache struct {
	results     map[string][]fuzzy.Result
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	maxQueries  int
	mu          sync.Mutex
}

// NewQueryCache creates a cache for up to maxQueries queries.
func NewQueryCache(maxQueries int) *QueryCache {
	if maxQueries <= 0 {
		maxQueries = DefaultCacheSize
	}
	return &QueryCache{
		results:    make(map[string][]fuzzy.Result, maxQueries),
		accessTime: make(map[string]int64, maxQueries),
		maxQueries: maxQueries,
	}
}

// Get returns the cached results for key.
func (qc *QueryCache) Get(key string) ([]fuzzy.Result, bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	results, ok := qc.results[key]
	if ok {
		qc.hits++
		qc.markAccessed(key)
	}
	return results, ok
}

// Put stores results for key.
func (qc *QueryCache) Put(key string, results []fuzzy.Result) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if _, ok := qc.results[key]; !ok && len(qc.results) >= qc.maxQueries {
		qc.evictLRU()
	}
	qc.results[key] = results
	qc.markAccessed(key)
}

// Reset drops every entry, for when the index is replaced.
func (qc *QueryCache) Reset() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	clear(qc.results)
	clear(qc.accessTime)
}

// Len is the number of cached queries.
func (qc *QueryCache) Len() int {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return len(qc.results)
}

// Hits counts lookups served from the cache.
func (qc *QueryCache) Hits() int64 {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.hits
}

func (qc *QueryCache) markAccessed(key string) {
	qc.accessCount++
	qc.accessTime[key] = qc.accessCount
}

func (qc *QueryCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, accessTime := range qc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(qc.results, oldestKey)
		delete(qc.accessTime, oldestKey)
		log.Debugf("Evicted query '%s' from cache", oldestKey)
	}
}
