// Package seen remembers which postings were already surfaced so each one is
// alerted at most once. Entries map a posting key to the Unix time it was
// last seen and expire after a retention window.
package seen

import (
	"errors"
	"sort"
	"time"

	"jobalert/internal/domain"
)

// ErrCacheCorrupt means the persisted cache could not be read. Loaders
// return it with an empty cache; callers log it and carry on.
var ErrCacheCorrupt = errors.New("seen cache corrupt")

// Cache is the in-memory cache for one run. It is not safe for concurrent
// use; the orchestrator owns it.
type Cache struct {
	entries map[domain.PostingKey]int64
	thisRun map[domain.PostingKey]struct{}
}

func New() *Cache {
	return &Cache{
		entries: map[domain.PostingKey]int64{},
		thisRun: map[domain.PostingKey]struct{}{},
	}
}

// FromMap builds a cache from persisted entries.
func FromMap(m map[string]int64) *Cache {
	c := New()
	for k, ts := range m {
		c.entries[domain.PostingKey(k)] = ts
	}
	return c
}

func (c *Cache) Contains(key domain.PostingKey) bool {
	_, ok := c.entries[key]
	return ok
}

// Record marks key as seen at ts. A key recorded in this run survives any
// Prune on this cache.
func (c *Cache) Record(key domain.PostingKey, ts time.Time) {
	c.entries[key] = ts.Unix()
	c.thisRun[key] = struct{}{}
}

// Prune drops entries last seen before now-retention and returns how many
// went. Keys recorded in this run are kept whatever their timestamp.
func (c *Cache) Prune(now time.Time, retention time.Duration) int {
	cutoff := now.Add(-retention).Unix()
	n := 0
	for k, ts := range c.entries {
		if _, ok := c.thisRun[k]; ok {
			continue
		}
		if ts < cutoff {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int { return len(c.entries) }

// RecordedThisRun is how many keys Record touched.
func (c *Cache) RecordedThisRun() int { return len(c.thisRun) }

// Snapshot copies the entries in persisted form.
func (c *Cache) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(c.entries))
	for k, ts := range c.entries {
		out[string(k)] = ts
	}
	return out
}

// Stats summarises the cache for the CLI.
type Stats struct {
	Entries int       `json:"entries"`
	Oldest  time.Time `json:"oldest"`
	Newest  time.Time `json:"newest"`
	// PerSource counts keys by their source prefix.
	PerSource map[string]int `json:"per_source"`
}

func (c *Cache) Stats() Stats {
	st := Stats{Entries: len(c.entries), PerSource: map[string]int{}}
	var oldest, newest int64
	for k, ts := range c.entries {
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
		if ts > newest {
			newest = ts
		}
		st.PerSource[sourceOf(k)]++
	}
	if st.Entries > 0 {
		st.Oldest = time.Unix(oldest, 0).UTC()
		st.Newest = time.Unix(newest, 0).UTC()
	}
	return st
}

// Sources lists the source prefixes in Stats order.
func (s Stats) Sources() []string {
	out := make([]string, 0, len(s.PerSource))
	for k := range s.PerSource {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if s.PerSource[out[i]] != s.PerSource[out[j]] {
			return s.PerSource[out[i]] > s.PerSource[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func sourceOf(k domain.PostingKey) string {
	s := string(k)
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i]
		}
	}
	return s
}
