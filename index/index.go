// Package index maintains the inverted index mapping terms to message
// postings, with incremental insert and removal.
package index

import (
	"sort"
	"sync"
	"time"

	"github.com/honganh1206/sift/message"
	"github.com/honganh1206/sift/tokenizer"
)

// Posting links a term back to a message. It copies the minimal metadata
// needed to filter, rank, and highlight without re-fetching the message.
// Postings are owned by the index and rebuilt whenever the message changes.
type Posting struct {
	MessageID      string       `json:"message_id"`
	ConversationID string       `json:"conversation_id"`
	UserID         string       `json:"user_id"`
	Timestamp      time.Time    `json:"timestamp"`
	Text           string       `json:"text"`
	Type           message.Type `json:"type"`
	HasAttachments bool         `json:"has_attachments,omitempty"`
}

// Index is the inverted index. Safe for concurrent use, but callers that
// need consistency across several calls (lookup per query term, scans over
// Terms) must serialize externally; the engine does this with its own lock.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[string]Posting // term -> message ID -> posting
	docTerms map[string][]string           // message ID -> terms it contributed
	tok      *tokenizer.Tokenizer
}

func New(tok *tokenizer.Tokenizer) *Index {
	if tok == nil {
		tok = tokenizer.Default()
	}
	return &Index{
		postings: make(map[string]map[string]Posting),
		docTerms: make(map[string][]string),
		tok:      tok,
	}
}

// Add indexes a message. If the message ID is already present, its previous
// postings are removed first, so re-indexing after an edit never leaves
// stale postings behind. A message with no indexable text is tracked by ID
// but contributes no postings.
func (ix *Index) Add(msg message.Message) {
	terms := ix.tok.Tokenize(msg.Text)

	p := Posting{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		UserID:         msg.UserID,
		Timestamp:      msg.Timestamp,
		Text:           msg.Text,
		Type:           msg.Type,
		HasAttachments: msg.HasAttachments(),
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(msg.ID)

	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		m, ok := ix.postings[term]
		if !ok {
			m = make(map[string]Posting)
			ix.postings[term] = m
		}
		m[msg.ID] = p
		ix.docTerms[msg.ID] = append(ix.docTerms[msg.ID], term)
	}

	if _, ok := ix.docTerms[msg.ID]; !ok {
		ix.docTerms[msg.ID] = nil
	}
}

// Remove drops every posting for the given message ID. Removing an unknown
// ID is a no-op: the host may remove a message that never got indexed.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
	delete(ix.docTerms, id)
}

func (ix *Index) removeLocked(id string) {
	for _, term := range ix.docTerms[id] {
		m, ok := ix.postings[term]
		if !ok {
			continue
		}
		delete(m, id)
		// Drop empty posting lists so fuzzy and pattern scans stay bounded
		// by the live vocabulary.
		if len(m) == 0 {
			delete(ix.postings, term)
		}
	}
	ix.docTerms[id] = nil
}

// Lookup returns the postings for an exact term, most recent first. Unknown
// terms yield an empty result, not an error.
func (ix *Index) Lookup(term string) []Posting {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	m, ok := ix.postings[term]
	if !ok {
		return nil
	}

	r := make([]Posting, 0, len(m))
	for _, p := range m {
		r = append(r, p)
	}
	sort.Slice(r, func(i, j int) bool {
		if !r[i].Timestamp.Equal(r[j].Timestamp) {
			return r[i].Timestamp.After(r[j].Timestamp)
		}
		return r[i].MessageID > r[j].MessageID
	})
	return r
}

// Terms returns a copy of the current vocabulary. The copy stays valid while
// mutations proceed, so fuzzy and pattern scans can run against it off the
// caller's interaction path.
func (ix *Index) Terms() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	terms := make([]string, 0, len(ix.postings))
	for term := range ix.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Clear drops all postings, typically before a full rebuild.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.postings = make(map[string]map[string]Posting)
	ix.docTerms = make(map[string][]string)
}

func (ix *Index) TermCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.postings)
}

func (ix *Index) DocCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docTerms)
}

// Snapshot copies the whole index into a serializable form for persistence.
func (ix *Index) Snapshot() map[string][]Posting {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	snap := make(map[string][]Posting, len(ix.postings))
	for term, m := range ix.postings {
		list := make([]Posting, 0, len(m))
		for _, p := range m {
			list = append(list, p)
		}
		snap[term] = list
	}
	return snap
}

// Restore replaces the index contents with a previously taken snapshot.
// Postings without a message ID are dropped rather than trusted; a damaged
// snapshot should degrade, not poison the index.
func (ix *Index) Restore(snap map[string][]Posting) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.postings = make(map[string]map[string]Posting, len(snap))
	ix.docTerms = make(map[string][]string)

	for term, list := range snap {
		if term == "" || len(list) == 0 {
			continue
		}
		m := make(map[string]Posting, len(list))
		for _, p := range list {
			if p.MessageID == "" {
				continue
			}
			m[p.MessageID] = p
			ix.docTerms[p.MessageID] = append(ix.docTerms[p.MessageID], term)
		}
		if len(m) > 0 {
			ix.postings[term] = m
		}
	}
}
