package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/assistant/internal/contact"
)

// Codec encodes and decodes a Document.
type Codec struct {
	Name      string
	Marshal   func(Document) ([]byte, error)
	Unmarshal func([]byte, *Document) error
}

// JSON writes documents with a four-space indent.
var JSON = Codec{
	Name: "json",
	Marshal: func(d Document) ([]byte, error) {
		data, err := json.MarshalIndent(d, "", "    ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	},
	Unmarshal: func(data []byte, d *Document) error {
		return json.Unmarshal(data, d)
	},
}

// YAML writes documents as a YAML mapping.
var YAML = Codec{
	Name: "yaml",
	Marshal: func(d Document) ([]byte, error) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	},
	Unmarshal: func(data []byte, d *Document) error {
		return yaml.Unmarshal(data, d)
	},
}

// FileStore persists a book as a single document file.
type FileStore struct {
	path  string
	codec Codec
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore that reads and writes path with codec.
func NewFileStore(path string, codec Codec) *FileStore {
	return &FileStore{path: path, codec: codec}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// Load reads the book. A missing or empty file yields an empty book.
func (s *FileStore) Load(_ context.Context) (*contact.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("address book not found, starting empty", "path", s.path)
			return contact.NewBook(), nil
		}
		return nil, fmt.Errorf("storage: reading %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return contact.NewBook(), nil
	}

	var doc Document
	if err := s.codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: parsing %s: %w", s.path, err)
	}
	book, err := restore(doc)
	if err != nil {
		return nil, fmt.Errorf("storage: loading %s: %w", s.path, err)
	}
	slog.Debug("address book loaded", "path", s.path, "format", s.codec.Name, "contacts", book.Len())
	return book, nil
}

// Save overwrites the file with b, creating parent directories as needed.
func (s *FileStore) Save(_ context.Context, b *contact.Book) error {
	data, err := s.codec.Marshal(snapshot(b))
	if err != nil {
		return fmt.Errorf("storage: marshaling: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage: creating directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("storage: writing %s: %w", s.path, err)
	}
	slog.Debug("address book saved", "path", s.path, "format", s.codec.Name, "contacts", b.Len())
	return nil
}

// Close is a no-op; files are opened and closed within each call.
func (s *FileStore) Close() error { return nil }
