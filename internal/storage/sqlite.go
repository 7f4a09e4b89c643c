package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/smileynet/assistant/internal/contact"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
    name TEXT PRIMARY KEY,
    phone TEXT NOT NULL,
    birthday TEXT,
    position INTEGER NOT NULL
);
`

// SQLiteStore persists a book in a SQLite database.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: creating schema in %s: %w", path, err)
	}
	return &SQLiteStore{path: path, db: db}, nil
}

// Load reads every contact in saved order.
func (s *SQLiteStore) Load(ctx context.Context) (*contact.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, phone, birthday FROM contacts ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("storage: querying %s: %w", s.path, err)
	}
	defer rows.Close()

	var records []*contact.Record
	for rows.Next() {
		var e Entry
		var bday sql.NullString
		if err := rows.Scan(&e.Name, &e.Phone, &bday); err != nil {
			return nil, fmt.Errorf("storage: scanning contact: %w", err)
		}
		if bday.Valid {
			e.Birthday = &bday.String
		}
		r, err := e.record(e.Name)
		if err != nil {
			return nil, fmt.Errorf("storage: loading %s: %w", s.path, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: reading rows: %w", err)
	}

	slog.Debug("address book loaded", "path", s.path, "format", "sqlite", "contacts", len(records))
	return contact.NewBook(records...), nil
}

// Save replaces the stored contacts with b in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, b *contact.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM contacts"); err != nil {
		return fmt.Errorf("storage: clearing contacts: %w", err)
	}

	pos := 0
	for name, r := range b.All() {
		var bday sql.NullString
		if v, ok := r.Birthday(); ok {
			bday = sql.NullString{String: v.Value(), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO contacts (name, phone, birthday, position) VALUES (?, ?, ?, ?)",
			name, r.Phone().String(), bday, pos,
		)
		if err != nil {
			return fmt.Errorf("storage: inserting %s: %w", name, err)
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: committing: %w", err)
	}
	slog.Debug("address book saved", "path", s.path, "format", "sqlite", "contacts", b.Len())
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
