package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/buntdb"

	"github.com/honganh1206/sift/history"
	"github.com/honganh1206/sift/index"
)

const (
	termKeyPrefix = "term:"
	historyKey    = "history"
	metaKey       = "meta"
)

type meta struct {
	SavedAt   time.Time `json:"saved_at"`
	TermCount int       `json:"term_count"`
}

// BuntStore persists snapshots in a buntdb file: one key per term posting
// list, plus history and metadata keys, all JSON values.
type BuntStore struct {
	db *buntdb.DB
}

// OpenBunt opens or creates the database file. Pass ":memory:" for an
// ephemeral store in tests.
func OpenBunt(path string) (*BuntStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	return &BuntStore{db: db}, nil
}

func (s *BuntStore) Close() error {
	return s.db.Close()
}

// Save replaces any previous snapshot in a single transaction.
func (s *BuntStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	historyJSON, err := json.Marshal(snap.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	metaJSON, err := json.Marshal(meta{SavedAt: savedAt, TermCount: len(snap.Terms)})
	if err != nil {
		return err
	}

	termJSON := make(map[string]string, len(snap.Terms))
	for term, postings := range snap.Terms {
		raw, err := json.Marshal(postings)
		if err != nil {
			return fmt.Errorf("encode postings for %q: %w", term, err)
		}
		termJSON[termKeyPrefix+term] = string(raw)
	}

	return s.db.Update(func(tx *buntdb.Tx) error {
		// Collect stale term keys first; deleting while iterating is not
		// allowed inside a buntdb transaction.
		var stale []string
		err := tx.AscendKeys(termKeyPrefix+"*", func(key, _ string) bool {
			if _, keep := termJSON[key]; !keep {
				stale = append(stale, key)
			}
			return true
		})
		if err != nil {
			return err
		}
		for _, key := range stale {
			if _, err := tx.Delete(key); err != nil {
				return err
			}
		}

		for key, value := range termJSON {
			if _, _, err := tx.Set(key, value, nil); err != nil {
				return err
			}
		}
		if _, _, err := tx.Set(historyKey, string(historyJSON), nil); err != nil {
			return err
		}
		_, _, err = tx.Set(metaKey, string(metaJSON), nil)
		return err
	})
}

// Load reads the last saved snapshot, or ErrNotFound if none exists.
func (s *BuntStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Terms: make(map[string][]index.Posting)}

	err := s.db.View(func(tx *buntdb.Tx) error {
		rawMeta, err := tx.Get(metaKey)
		if err == buntdb.ErrNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var m meta
		if err := json.Unmarshal([]byte(rawMeta), &m); err != nil {
			return fmt.Errorf("decode snapshot metadata: %w", err)
		}
		snap.SavedAt = m.SavedAt

		var decodeErr error
		err = tx.AscendKeys(termKeyPrefix+"*", func(key, value string) bool {
			term := strings.TrimPrefix(key, termKeyPrefix)
			var postings []index.Posting
			if decodeErr = json.Unmarshal([]byte(value), &postings); decodeErr != nil {
				decodeErr = fmt.Errorf("decode postings for %q: %w", term, decodeErr)
				return false
			}
			snap.Terms[term] = postings
			return true
		})
		if err != nil {
			return err
		}
		if decodeErr != nil {
			return decodeErr
		}

		rawHistory, err := tx.Get(historyKey)
		if err == buntdb.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var entries []history.Entry
		if err := json.Unmarshal([]byte(rawHistory), &entries); err != nil {
			return fmt.Errorf("decode history: %w", err)
		}
		snap.History = entries
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}
