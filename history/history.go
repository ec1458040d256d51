// Package history keeps a bounded, ordered record of past queries. It is
// both an audit trail and a prefix-completion source for suggestions.
package history

import (
	"sort"
	"strings"
	"sync"
	"time"

	sahilm "github.com/sahilm/fuzzy"
)

const DefaultCapacity = 50

// Entry records one completed search.
type Entry struct {
	Query       string            `json:"query"`
	Filters     map[string]string `json:"filters,omitempty"`
	ResultCount int               `json:"result_count"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Store holds entries most recent first, deduplicated by query string.
// Re-issuing a query moves it to the front instead of adding a second entry;
// when capacity is exceeded the oldest entry is evicted.
type Store struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

func (s *Store) Record(e Entry) {
	if e.Query == "" {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.entries {
		if existing.Query == e.Query {
			copy(s.entries[1:i+1], s.entries[:i])
			s.entries[0] = e
			return
		}
	}

	s.entries = append([]Entry{e}, s.entries...)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
	}
}

// Recent returns up to limit entries, most recent first. A non-positive
// limit returns everything.
func (s *Store) Recent(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, n)
	copy(out, s.entries[:n])
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Entries snapshots the full history for persistence.
func (s *Store) Entries() []Entry {
	return s.Recent(0)
}

// Restore replaces the history with a previously saved snapshot, trimmed to
// capacity.
func (s *Store) Restore(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	s.entries = make([]Entry, len(entries))
	copy(s.entries, entries)
}

// Suggest merges indexed terms starting with prefix and historical queries
// containing it. Terms come first in lexical order; historical queries are
// ranked by fuzzy match quality against the prefix. The merged list is
// deduplicated and capped at limit.
func (s *Store) Suggest(prefix string, limit int, indexTerms []string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string

	var matching []string
	for _, term := range indexTerms {
		if strings.HasPrefix(term, prefix) {
			matching = append(matching, term)
		}
	}
	sort.Strings(matching)
	for _, term := range matching {
		if len(out) >= limit {
			return out
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	s.mu.Lock()
	queries := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Query), prefix) {
			queries = append(queries, e.Query)
		}
	}
	s.mu.Unlock()

	for _, m := range sahilm.Find(prefix, queries) {
		if len(out) >= limit {
			break
		}
		if _, dup := seen[m.Str]; dup {
			continue
		}
		seen[m.Str] = struct{}{}
		out = append(out, m.Str)
	}

	return out
}
