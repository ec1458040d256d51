package message

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "messages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msg := Message{
		ID:             "m1",
		ConversationID: "c1",
		UserID:         "alice",
		Timestamp:      time.Date(2024, 6, 1, 12, 0, 0, 123456000, time.UTC),
		Text:           "launch the campaign",
		Type:           TypeText,
		Attachments:    []string{"deck.pdf", "chart.png"},
	}
	require.NoError(t, s.Put(ctx, msg))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, msg.Text, got.Text)
	assert.Equal(t, msg.Type, got.Type)
	assert.Equal(t, msg.Attachments, got.Attachments)
	assert.True(t, msg.Timestamp.Equal(got.Timestamp))
	assert.True(t, got.HasAttachments())
}

func TestPutReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	msg := Message{ID: "m1", ConversationID: "c1", UserID: "alice", Timestamp: time.Now(), Text: "draft", Type: TypeText}
	require.NoError(t, s.Put(ctx, msg))

	msg.Text = "final"
	require.NoError(t, s.Put(ctx, msg))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "final", got.Text)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Message{ID: "m1", Timestamp: time.Now(), Type: TypeText}))
	require.NoError(t, s.Delete(ctx, "m1"))

	_, err := s.Get(ctx, "m1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Deleting an unknown ID is not an error.
	assert.NoError(t, s.Delete(ctx, "ghost"))
}

func TestMessagesOrderedBySendTime(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Put(ctx, Message{ID: "m2", Timestamp: base.Add(time.Hour), Type: TypeText}))
	require.NoError(t, s.Put(ctx, Message{ID: "m1", Timestamp: base, Type: TypeText}))
	require.NoError(t, s.Put(ctx, Message{ID: "m3", Timestamp: base.Add(2 * time.Hour), Type: TypeMedia}))

	msgs, err := s.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
	assert.Equal(t, "m3", msgs[2].ID)
}

func TestHasAttachments(t *testing.T) {
	assert.False(t, Message{}.HasAttachments())
	assert.True(t, Message{Attachments: []string{"a.png"}}.HasAttachments())
}
