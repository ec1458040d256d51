// Package persist serializes the search engine state to a durable local
// store and restores it across sessions. Persistence is an optimization: a
// missing or unreadable snapshot triggers a rebuild from the message source,
// never a hard failure.
package persist

import (
	"context"
	"errors"
	"time"

	"github.com/honganh1206/sift/history"
	"github.com/honganh1206/sift/index"
)

// ErrNotFound reports that no snapshot has been saved yet.
var ErrNotFound = errors.New("persist: no saved snapshot")

// Snapshot is a consistent, serializable copy of the engine state, taken
// before serialization begins so an in-flight save never observes a
// half-mutated index.
type Snapshot struct {
	Terms   map[string][]index.Posting `json:"terms"`
	History []history.Entry            `json:"history"`
	SavedAt time.Time                  `json:"saved_at"`
}

// Store is the durable boundary. Implementations treat the underlying
// storage as an opaque key-value database.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}
