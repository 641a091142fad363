package orchestrator

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/16bitOni/finance-brifer-agent/internal/portfolio"
)

// resultCache keeps composed answers in memory for a TTL so repeated
// questions within a session skip the provider round trips.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]resultEntry
}

type resultEntry struct {
	answer  *Answer
	expires time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]resultEntry),
	}
}

// cacheKey canonicalizes the query and its filters so that filter ordering
// does not fragment the cache.
func cacheKey(query string, f portfolio.Filters) string {
	parts := []string{strings.ToLower(strings.TrimSpace(query))}
	for _, dim := range [][]string{f.Regions, f.Sectors, f.Symbols} {
		sorted := append([]string(nil), dim...)
		sort.Strings(sorted)
		parts = append(parts, strings.Join(sorted, ","))
	}
	return strings.Join(parts, "|")
}

func (rc *resultCache) get(key string) (*Answer, bool) {
	if rc == nil || rc.ttl <= 0 {
		return nil, false
	}
	rc.mu.RLock()
	entry, ok := rc.entries[key]
	rc.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.answer, true
}

func (rc *resultCache) set(key string, answer *Answer) {
	if rc == nil || rc.ttl <= 0 {
		return
	}
	rc.mu.Lock()
	rc.entries[key] = resultEntry{answer: answer, expires: time.Now().Add(rc.ttl)}
	rc.mu.Unlock()
}
