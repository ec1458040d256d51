package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honganh1206/sift/history"
	"github.com/honganh1206/sift/index"
)

func openTestStore(t *testing.T) *BuntStore {
	t.Helper()
	s, err := OpenBunt(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() *Snapshot {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &Snapshot{
		Terms: map[string][]index.Posting{
			"campaign": {{MessageID: "m1", ConversationID: "c1", UserID: "alice", Timestamp: at, Text: "campaign launch"}},
			"launch":   {{MessageID: "m1", ConversationID: "c1", UserID: "alice", Timestamp: at, Text: "campaign launch"}},
		},
		History: []history.Entry{
			{Query: "campaign", ResultCount: 1, Timestamp: at},
		},
		SavedAt: at,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	got, err := s.Load(ctx)
	require.NoError(t, err)

	want := sampleSnapshot()
	assert.Equal(t, want.Terms, got.Terms)
	assert.Equal(t, want.History, got.History)
	assert.True(t, want.SavedAt.Equal(got.SavedAt))
}

func TestLoadEmptyStore(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReplacesStaleTerms(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	smaller := &Snapshot{
		Terms: map[string][]index.Posting{
			"budget": {{MessageID: "m2"}},
		},
	}
	require.NoError(t, s.Save(ctx, smaller))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Terms, 1, "terms from the previous snapshot must be gone")
	assert.Contains(t, got.Terms, "budget")
	assert.NotContains(t, got.Terms, "campaign")
	assert.Empty(t, got.History)
}

func TestSaveCancelledContext(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, sampleSnapshot()), context.Canceled)

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound, "nothing may be written under a cancelled context")
}

func TestFileBackedStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "index.db")
	ctx := context.Background()

	s, err := OpenBunt(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleSnapshot()))
	require.NoError(t, s.Close())

	reopened, err := OpenBunt(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Terms, 2)
	assert.Len(t, got.History, 1)
}
