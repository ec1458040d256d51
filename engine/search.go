package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/honganh1206/sift/fuzzy"
	"github.com/honganh1206/sift/history"
	"github.com/honganh1206/sift/index"
	"github.com/honganh1206/sift/message"
	"github.com/honganh1206/sift/pattern"
)

// Filters narrows a search. Every supplied filter must hold for a message
// to be returned; zero values mean "unset".
type Filters struct {
	ConversationID string
	UserID         string
	Type           message.Type
	// DateFrom and DateTo are inclusive bounds on the message timestamp.
	DateFrom *time.Time
	DateTo   *time.Time
	// HasAttachments is tri-state: nil means no attachment filtering.
	HasAttachments *bool
	// Fuzzy enables typo-tolerant matching. nil means enabled.
	Fuzzy *bool
	// MaxDistance overrides the configured fuzzy edit distance when > 0.
	MaxDistance int

	Limit  int
	Offset int
}

func (f Filters) fuzzyEnabled() bool {
	return f.Fuzzy == nil || *f.Fuzzy
}

// impossible reports a date range no message can satisfy. Such a query
// returns an empty page rather than an error.
func (f Filters) impossible() bool {
	return f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo)
}

func (f Filters) matches(p index.Posting) bool {
	if f.ConversationID != "" && p.ConversationID != f.ConversationID {
		return false
	}
	if f.UserID != "" && p.UserID != f.UserID {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.DateFrom != nil && p.Timestamp.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && p.Timestamp.After(*f.DateTo) {
		return false
	}
	if f.HasAttachments != nil && p.HasAttachments != *f.HasAttachments {
		return false
	}
	return true
}

// summary renders the set filters for the history record.
func (f Filters) summary() map[string]string {
	out := make(map[string]string)
	if f.ConversationID != "" {
		out["conversation"] = f.ConversationID
	}
	if f.UserID != "" {
		out["user"] = f.UserID
	}
	if f.Type != "" {
		out["type"] = string(f.Type)
	}
	if f.DateFrom != nil {
		out["from"] = f.DateFrom.Format(time.RFC3339)
	}
	if f.DateTo != nil {
		out["to"] = f.DateTo.Format(time.RFC3339)
	}
	if f.HasAttachments != nil {
		out["attachments"] = fmt.Sprintf("%t", *f.HasAttachments)
	}
	if !f.fuzzyEnabled() {
		out["fuzzy"] = "false"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Result is one search hit. Derived per query, never persisted.
type Result struct {
	MessageID       string       `json:"message_id"`
	ConversationID  string       `json:"conversation_id"`
	UserID          string       `json:"user_id"`
	Timestamp       time.Time    `json:"timestamp"`
	Text            string       `json:"text"`
	HighlightedText string       `json:"highlighted_text"`
	Type            message.Type `json:"type"`
	FuzzyMatch      bool         `json:"fuzzy_match"`
	MatchedTerm     string       `json:"matched_term,omitempty"`
}

// ResultPage is one page of a filtered, sorted result set.
type ResultPage struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
	Page    int      `json:"page"`
	HasMore bool     `json:"has_more"`
}

type match struct {
	posting index.Posting
	fuzzy   bool
	term    string
}

// Search runs the full query pipeline: tokenize, look up exact, wildcard,
// and fuzzy matches, deduplicate with exact wins, apply filters as a
// conjunction, sort by recency, paginate, and highlight.
//
// Results are ordered by timestamp descending with message ID as tiebreak:
// for chat history, recency beats lexical relevance scoring. A query with
// no usable terms returns an empty page, as does an impossible date range;
// neither is an error. Cancellation via ctx is all-or-nothing.
func (e *Engine) Search(ctx context.Context, query string, f Filters) (*ResultPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = e.cfg.Search.DefaultLimit
	}
	if limit > e.cfg.Search.MaxLimit {
		limit = e.cfg.Search.MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	trimmed := strings.TrimSpace(query)

	// Wildcard tokens would lose their metacharacters in the tokenizer, so
	// they are split off the raw query first.
	var patterns []string
	var plain []string
	for _, field := range strings.Fields(trimmed) {
		if pattern.HasWildcard(field) {
			patterns = append(patterns, strings.ToLower(field))
		} else {
			plain = append(plain, field)
		}
	}
	terms := e.tok.Tokenize(strings.Join(plain, " "))

	empty := &ResultPage{Limit: limit, Offset: offset, Page: offset/limit + 1}

	record := func(total int) {
		if trimmed == "" {
			return
		}
		e.hist.Record(history.Entry{
			Query:       trimmed,
			Filters:     f.summary(),
			ResultCount: total,
			Timestamp:   time.Now(),
		})
	}

	if len(terms) == 0 && len(patterns) == 0 {
		record(0)
		return empty, nil
	}
	if f.impossible() {
		e.logger.Debug("impossible date range, returning empty page", "query", trimmed)
		record(0)
		return empty, nil
	}

	matches, matchedTerms, err := e.collectMatches(ctx, terms, patterns, f)
	if err != nil {
		return nil, err
	}

	var hits []match
	for _, m := range matches {
		if m.posting.MessageID == "" {
			// Dangling posting: self-heal by dropping it.
			e.logger.Warn("dropping posting without message id", "term", m.term)
			continue
		}
		if f.matches(m.posting) {
			hits = append(hits, m)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		ti, tj := hits[i].posting.Timestamp, hits[j].posting.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return hits[i].posting.MessageID > hits[j].posting.MessageID
	})

	total := len(hits)
	start := offset
	if start > total {
		start = total
	}
	stop := start + limit
	if stop > total {
		stop = total
	}

	highlighter := e.newHighlighter(matchedTerms)

	results := make([]Result, 0, stop-start)
	for _, m := range hits[start:stop] {
		p := m.posting
		results = append(results, Result{
			MessageID:       p.MessageID,
			ConversationID:  p.ConversationID,
			UserID:          p.UserID,
			Timestamp:       p.Timestamp,
			Text:            p.Text,
			HighlightedText: highlighter(p.Text),
			Type:            p.Type,
			FuzzyMatch:      m.fuzzy,
			MatchedTerm:     m.term,
		})
	}

	record(total)

	return &ResultPage{
		Results: results,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Page:    offset/limit + 1,
		HasMore: offset+limit < total,
	}, nil
}

// collectMatches unions exact, wildcard, and fuzzy postings, deduplicated
// by message ID with exact matches taking precedence over fuzzy ones. It
// returns the set of index terms that matched, for highlighting.
func (e *Engine) collectMatches(ctx context.Context, terms, patterns []string, f Filters) (map[string]match, map[string]struct{}, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	matches := make(map[string]match)
	matchedTerms := make(map[string]struct{})

	addExact := func(term string, postings []index.Posting) {
		if len(postings) > 0 {
			matchedTerms[term] = struct{}{}
		}
		for _, p := range postings {
			matches[p.MessageID] = match{posting: p, term: term}
		}
	}

	for _, term := range terms {
		addExact(term, e.idx.Lookup(term))
	}

	var snapshot []string
	if len(patterns) > 0 || (f.fuzzyEnabled() && len(terms) > 0) {
		snapshot = e.idx.Terms()
	}

	for _, pat := range patterns {
		resolved, err := pattern.Matches(snapshot, pat)
		if err != nil {
			e.logger.Warn("skipping unusable wildcard pattern", "pattern", pat, "error", err)
			continue
		}
		for _, term := range resolved {
			addExact(term, e.idx.Lookup(term))
		}
	}

	if !f.fuzzyEnabled() {
		return matches, matchedTerms, nil
	}

	maxDist := f.MaxDistance
	if maxDist <= 0 {
		maxDist = e.cfg.Search.MaxFuzzyDistance
	}

	for _, term := range terms {
		candidates, err := e.fuzzyCandidates(ctx, snapshot, term, maxDist)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			// Degrade to exact-only rather than failing the search.
			e.logger.Warn("fuzzy matching failed, returning exact matches only", "term", term, "error", err)
			break
		}

		for _, c := range candidates {
			if c.Distance == 0 {
				continue // already covered by the exact lookup
			}
			postings := e.idx.Lookup(c.Term)
			if len(postings) > 0 {
				matchedTerms[c.Term] = struct{}{}
			}
			for _, p := range postings {
				// Exact wins; an earlier (closer) fuzzy claim also stands.
				if _, claimed := matches[p.MessageID]; claimed {
					continue
				}
				matches[p.MessageID] = match{posting: p, fuzzy: true, term: c.Term}
			}
		}
	}

	return matches, matchedTerms, nil
}

func (e *Engine) fuzzyCandidates(ctx context.Context, snapshot []string, term string, maxDist int) ([]fuzzy.Candidate, error) {
	key := fmt.Sprintf("%s|%d", term, maxDist)
	if cached, ok := e.fuzzyCache.Get(key); ok {
		return cached, nil
	}

	candidates, err := fuzzy.Candidates(ctx, snapshot, term, maxDist)
	if err != nil {
		return nil, err
	}
	e.fuzzyCache.Add(key, candidates)
	return candidates, nil
}

// newHighlighter wraps every word-boundary occurrence of a matched term in
// the configured tag, case-insensitively.
func (e *Engine) newHighlighter(matchedTerms map[string]struct{}) func(string) string {
	if len(matchedTerms) == 0 {
		return func(text string) string { return text }
	}

	alts := make([]string, 0, len(matchedTerms))
	for term := range matchedTerms {
		alts = append(alts, regexp.QuoteMeta(term))
	}
	sort.Strings(alts)

	re, err := regexp.Compile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
	if err != nil {
		e.logger.Warn("failed to build highlight expression", "error", err)
		return func(text string) string { return text }
	}

	tag := e.cfg.Search.HighlightTag
	replacement := "<" + tag + ">$1</" + tag + ">"
	return func(text string) string {
		return re.ReplaceAllString(text, replacement)
	}
}
