package attachment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS attachments (
	id  INTEGER PRIMARY KEY,
	url TEXT NOT NULL
);`

// Store is an attachment table in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the SQLite database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Put records the URL for id, replacing any previous value.
func (s *Store) Put(ctx context.Context, id int64, url string) error {
	if url == "" {
		return fmt.Errorf("attachment %d: empty url", id)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO attachments (id, url) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET url = excluded.url",
		id, url)
	if err != nil {
		return fmt.Errorf("store attachment %d: %w", id, err)
	}
	return nil
}

// AttachmentURL returns the stored URL for id, or ErrNotFound.
func (s *Store) AttachmentURL(ctx context.Context, id int64) (string, error) {
	var u string
	err := s.db.QueryRowContext(ctx, "SELECT url FROM attachments WHERE id = ?", id).Scan(&u)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("lookup attachment %d: %w", id, err)
	}
	return u, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
