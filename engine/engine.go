// Package engine orchestrates tokenization, exact, fuzzy, and wildcard
// lookup over the inverted index, producing ranked, paginated, highlighted
// search results for the host chat application.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/honganh1206/sift/config"
	"github.com/honganh1206/sift/fuzzy"
	"github.com/honganh1206/sift/history"
	"github.com/honganh1206/sift/index"
	"github.com/honganh1206/sift/message"
	"github.com/honganh1206/sift/persist"
	"github.com/honganh1206/sift/tokenizer"
)

// Engine is the single owner of all index state. The host application
// creates one at start-up, feeds it message events, and tears it down with
// Close; there is no process-wide singleton.
//
// Mutations are serialized through the write lock; queries run under the
// read lock and hand immutable term snapshots to the fuzzy and pattern
// scans, so an expensive scan never races a mutation.
type Engine struct {
	mu  sync.RWMutex
	cfg config.Config

	tok  *tokenizer.Tokenizer
	idx  *index.Index
	hist *history.Store

	store  persist.Store  // optional snapshot storage
	source message.Source // optional authoritative corpus for rebuilds

	// fuzzyCache memoizes candidate scans per (term, distance); any index
	// mutation invalidates it wholesale.
	fuzzyCache *lru.Cache[string, []fuzzy.Candidate]

	logger *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStore attaches snapshot persistence.
func WithStore(s persist.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithSource attaches the authoritative message corpus used for rebuilds.
func WithSource(src message.Source) Option {
	return func(e *Engine) { e.source = src }
}

func New(cfg config.Config, opts ...Option) *Engine {
	cfg.Normalize()

	tok := tokenizer.New(tokenizer.Config{
		MinTermLength:  cfg.Index.MinTermLength,
		Stemming:       cfg.Index.Stemming,
		ExtraStopWords: cfg.Index.ExtraStopWords,
	})

	cache, _ := lru.New[string, []fuzzy.Candidate](cfg.Search.FuzzyCacheSize)

	e := &Engine{
		cfg:        cfg,
		tok:        tok,
		idx:        index.New(tok),
		hist:       history.NewStore(cfg.History.Capacity),
		fuzzyCache: cache,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnMessageCreated indexes a newly arrived message.
func (e *Engine) OnMessageCreated(msg message.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx.Add(msg)
	e.fuzzyCache.Purge()
}

// OnMessageEdited re-indexes an edited message, replacing all of its prior
// postings.
func (e *Engine) OnMessageEdited(msg message.Message) {
	e.OnMessageCreated(msg)
}

// OnMessageDeleted removes every posting for the message. Unknown IDs are a
// no-op.
func (e *Engine) OnMessageDeleted(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx.Remove(id)
	e.fuzzyCache.Purge()
}

// LoadCorpus replaces the index contents with the given messages, used at
// start-up to build or rebuild from scratch.
func (e *Engine) LoadCorpus(msgs []message.Message) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.idx.Clear()
	for _, msg := range msgs {
		e.idx.Add(msg)
	}
	e.fuzzyCache.Purge()

	e.logger.Info("corpus loaded",
		"messages", len(msgs),
		"terms", e.idx.TermCount())
}

// Clear drops all index state and history.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx.Clear()
	e.hist.Clear()
	e.fuzzyCache.Purge()
}

// RecentHistory returns up to limit past queries, most recent first.
func (e *Engine) RecentHistory(limit int) []history.Entry {
	return e.hist.Recent(limit)
}

func (e *Engine) ClearHistory() {
	e.hist.Clear()
}

// Suggest completes a prefix from indexed terms and past queries.
func (e *Engine) Suggest(prefix string, limit int) []string {
	if limit <= 0 {
		limit = e.cfg.Search.DefaultLimit
	}

	e.mu.RLock()
	terms := e.idx.Terms()
	e.mu.RUnlock()

	return e.hist.Suggest(prefix, limit, terms)
}

// TermCount reports the current vocabulary size.
func (e *Engine) TermCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.TermCount()
}

// DocCount reports how many messages are indexed.
func (e *Engine) DocCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.DocCount()
}

// Load restores the engine from its snapshot store. A missing or unreadable
// snapshot is treated as a cache miss: the engine rebuilds from the message
// source instead of failing.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return e.Rebuild(ctx)
	}

	snap, err := e.store.Load(ctx)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			e.logger.Debug("no index snapshot found, rebuilding")
		} else {
			e.logger.Warn("failed to load index snapshot, rebuilding", "error", err)
		}
		return e.Rebuild(ctx)
	}

	e.mu.Lock()
	e.idx.Restore(snap.Terms)
	e.hist.Restore(snap.History)
	e.fuzzyCache.Purge()
	terms := e.idx.TermCount()
	docs := e.idx.DocCount()
	e.mu.Unlock()

	e.logger.Info("index snapshot restored",
		"terms", terms,
		"messages", docs,
		"saved_at", snap.SavedAt)
	return nil
}

// Rebuild re-tokenizes the authoritative corpus from scratch.
func (e *Engine) Rebuild(ctx context.Context) error {
	if e.source == nil {
		return nil
	}

	msgs, err := e.source.Messages(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index from source: %w", err)
	}
	e.LoadCorpus(msgs)
	return nil
}

// Save snapshots the engine under the read lock and serializes outside it,
// so queries issued while a save is in flight see a consistent view and are
// never blocked by storage I/O.
func (e *Engine) Save(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	e.mu.RLock()
	snap := &persist.Snapshot{
		Terms:   e.idx.Snapshot(),
		History: e.hist.Entries(),
		SavedAt: time.Now(),
	}
	e.mu.RUnlock()

	if err := e.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save index snapshot: %w", err)
	}

	e.logger.Debug("index snapshot saved", "terms", len(snap.Terms))
	return nil
}

// Close flushes the engine state to the snapshot store.
func (e *Engine) Close(ctx context.Context) error {
	return e.Save(ctx)
}
