// Package storage persists an address book. The backend is chosen from the
// file extension: JSON (default), YAML or SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/smileynet/assistant/internal/contact"
)

// DefaultPath is the book location used when none is configured.
const DefaultPath = "address.json"

// ErrUnsupportedFormat indicates a path whose extension maps to no backend.
var ErrUnsupportedFormat = errors.New("storage: unsupported file format")

// Store loads and saves a whole address book.
type Store interface {
	// Load returns the persisted book, or an empty book if nothing was saved yet.
	Load(ctx context.Context) (*contact.Book, error)
	// Save replaces the persisted book with b.
	Save(ctx context.Context, b *contact.Book) error
	// Close releases any resources held by the store.
	Close() error
}

// Open returns the Store for path, selected by its extension.
func Open(path string) (Store, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".json":
		return NewFileStore(path, JSON), nil
	case ".yaml", ".yml":
		return NewFileStore(path, YAML), nil
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Entry is the persisted form of one contact.
type Entry struct {
	Name     string  `json:"name" yaml:"name"`
	Phone    string  `json:"phone" yaml:"phone"`
	Birthday *string `json:"birthday" yaml:"birthday"`
}

// Document is the persisted form of a book: entries keyed by contact name.
type Document map[string]Entry

// snapshot converts a book into its persisted form.
func snapshot(b *contact.Book) Document {
	doc := make(Document, b.Len())
	for name, r := range b.All() {
		e := Entry{Name: r.Name().String(), Phone: r.Phone().String()}
		if bday, ok := r.Birthday(); ok {
			v := bday.Value()
			e.Birthday = &v
		}
		doc[name] = e
	}
	return doc
}

// restore validates every entry and rebuilds a book. Keys are visited in
// sorted order so the result does not depend on map iteration. An entry
// without a name takes its key.
func restore(doc Document) (*contact.Book, error) {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	records := make([]*contact.Record, 0, len(keys))
	for _, k := range keys {
		r, err := doc[k].record(k)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return contact.NewBook(records...), nil
}

func (e Entry) record(key string) (*contact.Record, error) {
	name := e.Name
	if name == "" {
		name = key
	}
	var bday string
	if e.Birthday != nil {
		bday = *e.Birthday
	}
	return contact.NewRecord(name, e.Phone, bday)
}
