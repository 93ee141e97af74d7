// Package store is the SQLite-backed corpus store: accepted chat lines plus
// the sticker/animation/allowed-user bookkeeping around them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// Origin records where a corpus line came from. It is audit metadata only;
// the model never looks at it.
type Origin struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	ChatID    int64
	ImportID  string // bulk-import batch id, empty for live messages
}

// Stats summarizes the stored corpus.
type Stats struct {
	Messages    int
	UniqueWords int
	Stickers    int
	Animations  int
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// NewImportID returns a fresh batch id for a bulk import.
func NewImportID() string {
	return ulid.Make().String()
}

// Open opens (or creates) the store at the given path, ensuring the parent
// directory exists and the schema is in place.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping store at %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			text TEXT NOT NULL,
			chat_id INTEGER NOT NULL,
			import_id TEXT,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
		CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id);
		CREATE INDEX IF NOT EXISTS idx_messages_import_id ON messages(import_id);

		CREATE TABLE IF NOT EXISTS stickers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sticker_id TEXT NOT NULL,
			file_id TEXT NOT NULL UNIQUE,
			set_name TEXT,
			user_id INTEGER NOT NULL,
			chat_id INTEGER NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);

		CREATE TABLE IF NOT EXISTS animations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			animation_id TEXT NOT NULL,
			file_id TEXT NOT NULL UNIQUE,
			file_name TEXT,
			mime_type TEXT,
			user_id INTEGER NOT NULL,
			chat_id INTEGER NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);

		CREATE TABLE IF NOT EXISTS allowed_users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE,
			username TEXT,
			first_name TEXT,
			last_name TEXT,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
	`)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendMessage stores one accepted corpus line. Lines are append-only: no
// update or delete path exists.
func (s *Store) AppendMessage(ctx context.Context, text string, origin Origin) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, username, first_name, last_name, text, chat_id, import_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		origin.UserID, origin.Username, origin.FirstName, origin.LastName, text, origin.ChatID, origin.ImportID,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ReadAllTexts returns every stored line in insertion order. This is the
// point-in-time corpus read a model rebuild works from.
func (s *Store) ReadAllTexts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text FROM messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return texts, nil
}

// SaveSticker stores a sticker, deduplicating on file_id. Returns whether a
// new row was inserted.
func (s *Store) SaveSticker(ctx context.Context, stickerID, fileID, setName string, userID, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO stickers (sticker_id, file_id, set_name, user_id, chat_id) VALUES (?, ?, ?, ?, ?)`,
		stickerID, fileID, setName, userID, chatID,
	)
	if err != nil {
		return false, fmt.Errorf("insert sticker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RandomSticker returns a random stored sticker file_id, or "" when none exist.
func (s *Store) RandomSticker(ctx context.Context) (string, error) {
	var fileID string
	err := s.db.QueryRowContext(ctx, `SELECT file_id FROM stickers ORDER BY RANDOM() LIMIT 1`).Scan(&fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("random sticker: %w", err)
	}
	return fileID, nil
}

// SaveAnimation stores a GIF animation, deduplicating on file_id.
func (s *Store) SaveAnimation(ctx context.Context, animationID, fileID, fileName, mimeType string, userID, chatID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO animations (animation_id, file_id, file_name, mime_type, user_id, chat_id) VALUES (?, ?, ?, ?, ?, ?)`,
		animationID, fileID, fileName, mimeType, userID, chatID,
	)
	if err != nil {
		return false, fmt.Errorf("insert animation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RandomAnimation returns a random stored animation file_id, or "" when none
// exist.
func (s *Store) RandomAnimation(ctx context.Context) (string, error) {
	var fileID string
	err := s.db.QueryRowContext(ctx, `SELECT file_id FROM animations ORDER BY RANDOM() LIMIT 1`).Scan(&fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("random animation: %w", err)
	}
	return fileID, nil
}

// AddAllowedUser inserts or refreshes a user in the allowed list.
func (s *Store) AddAllowedUser(ctx context.Context, userID int64, username, firstName, lastName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO allowed_users (user_id, username, first_name, last_name) VALUES (?, ?, ?, ?)`,
		userID, username, firstName, lastName,
	)
	if err != nil {
		return fmt.Errorf("add allowed user %d: %w", userID, err)
	}
	return nil
}

// IsUserAllowed reports whether the user is in the allowed list.
func (s *Store) IsUserAllowed(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM allowed_users WHERE user_id = ?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check allowed user %d: %w", userID, err)
	}
	return true, nil
}

// RemoveAllowedUser deletes a user from the allowed list. Returns whether the
// user was present.
func (s *Store) RemoveAllowedUser(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM allowed_users WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("remove allowed user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats gathers corpus counters. Unique words are counted in Go over the
// lower-cased texts, ignoring single-character words.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.Messages); err != nil {
		return st, fmt.Errorf("count messages: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stickers`).Scan(&st.Stickers); err != nil {
		return st, fmt.Errorf("count stickers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM animations`).Scan(&st.Animations); err != nil {
		return st, fmt.Errorf("count animations: %w", err)
	}

	texts, err := s.ReadAllTexts(ctx)
	if err != nil {
		return st, err
	}
	unique := map[string]struct{}{}
	for _, text := range texts {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if len([]rune(w)) > 1 {
				unique[w] = struct{}{}
			}
		}
	}
	st.UniqueWords = len(unique)
	return st, nil
}
