package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DefaultSlotKey is the fixed key the cart payload lives under.
const DefaultSlotKey = "cart"

// SQLiteSlot keeps the payload in a single-row key-value table of a local
// SQLite database. The pure-Go driver keeps the binary CGO-free.
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens (or creates) the slot database at path and ensures the
// backing table exists.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open slot database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cart_slots (
			key TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure cart_slots table: %w", err)
	}
	return db, nil
}

// NewSQLiteSlot wraps an open database; key selects the slot row.
func NewSQLiteSlot(db *sql.DB, key string) *SQLiteSlot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &SQLiteSlot{db: db, key: key}
}

func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM cart_slots WHERE key = $1
	`, s.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedReadSlot, err)
	}
	return payload, nil
}

func (s *SQLiteSlot) Write(ctx context.Context, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_slots (key, payload, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`, s.key, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedWriteSlot, err)
	}
	return nil
}

func (s *SQLiteSlot) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_slots WHERE key = $1
	`, s.key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedClearSlot, err)
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
