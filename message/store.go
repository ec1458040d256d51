package message

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is a durable message corpus backed by a local sqlite database.
// It implements Source and is what the CLI seeds messages into.
type SQLiteStore struct {
	db *sql.DB
}

func OpenStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema initialization SQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put inserts or replaces a message by ID.
func (s *SQLiteStore) Put(ctx context.Context, msg Message) error {
	var attachments any
	if len(msg.Attachments) > 0 {
		raw, err := json.Marshal(msg.Attachments)
		if err != nil {
			return err
		}
		attachments = string(raw)
	}

	query := `
	INSERT OR REPLACE INTO messages (id, conversation_id, user_id, sent_at, text, type, attachments)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.UserID, msg.Timestamp.UTC().Format(time.RFC3339Nano),
		msg.Text, string(msg.Type), attachments)
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?;`, id)
	return err
}

// Get returns the message with the given ID, or sql.ErrNoRows.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Message, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, conversation_id, user_id, sent_at, text, type, attachments
	FROM messages WHERE id = ?;
	`, id)
	return scanMessage(row.Scan)
}

// Messages returns the whole corpus ordered by send time, oldest first.
func (s *SQLiteStore) Messages(ctx context.Context) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, conversation_id, user_id, sent_at, text, type, attachments
	FROM messages ORDER BY sent_at ASC, id ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}

	return msgs, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages;`).Scan(&n)
	return n, err
}

func scanMessage(scan func(dest ...any) error) (Message, error) {
	var (
		msg         Message
		sentAt      string
		msgType     string
		attachments sql.NullString
	)

	if err := scan(&msg.ID, &msg.ConversationID, &msg.UserID, &sentAt, &msg.Text, &msgType, &attachments); err != nil {
		return Message{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, sentAt)
	if err != nil {
		return Message{}, fmt.Errorf("failed to parse sent_at %q: %w", sentAt, err)
	}
	msg.Timestamp = ts
	msg.Type = Type(msgType)

	if attachments.Valid && attachments.String != "" {
		if err := json.Unmarshal([]byte(attachments.String), &msg.Attachments); err != nil {
			return Message{}, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}

	return msg, nil
}
