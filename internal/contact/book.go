package contact

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"
)

var (
	// ErrNotFound indicates no contact exists under the given name.
	ErrNotFound = errors.New("contact not found")
	// ErrDuplicate indicates a contact with the given name already exists.
	ErrDuplicate = errors.New("contact already exists")
)

// Book is an in-memory address book keyed by contact name. It is not safe
// for concurrent use.
type Book struct {
	records map[string]*Record
	order   []string // insertion order of keys
}

// NewBook builds a Book from already validated records. It bypasses the
// duplicate check of Add: a later record replaces an earlier one with the
// same name. Persistence uses it to restore a saved book.
func NewBook(records ...*Record) *Book {
	b := &Book{records: make(map[string]*Record, len(records))}
	for _, r := range records {
		b.put(r)
	}
	return b
}

func (b *Book) put(r *Record) {
	key := r.Name().String()
	if _, ok := b.records[key]; !ok {
		b.order = append(b.order, key)
	}
	b.records[key] = r
}

func (b *Book) lookup(name string) (*Record, error) {
	r, ok := b.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r, nil
}

// Len returns the number of contacts.
func (b *Book) Len() int { return len(b.records) }

// Has reports whether a contact named name exists.
func (b *Book) Has(name string) bool {
	_, ok := b.records[name]
	return ok
}

// Get returns the record for name.
func (b *Book) Get(name string) (*Record, error) {
	return b.lookup(name)
}

// Add inserts a new contact. It fails with ErrDuplicate if the name is taken
// and with a *ValidationError if any field is invalid.
func (b *Book) Add(name, phone, birthday string) error {
	if b.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r, err := NewRecord(name, phone, birthday)
	if err != nil {
		return err
	}
	b.put(r)
	return nil
}

// ChangePhone replaces the phone number of an existing contact and returns a
// confirmation message.
func (b *Book) ChangePhone(name, phone string) (string, error) {
	r, err := b.lookup(name)
	if err != nil {
		return "", err
	}
	if err := r.SetPhone(phone); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s changed phone number to %s", r.Name(), r.Phone()), nil
}

// Delete removes a contact and returns a confirmation message.
func (b *Book) Delete(name string) (string, error) {
	if _, err := b.lookup(name); err != nil {
		return "", err
	}
	delete(b.records, name)
	if i := slices.Index(b.order, name); i >= 0 {
		b.order = slices.Delete(b.order, i, i+1)
	}
	return "Contact was deleted", nil
}

// Phone returns the phone number of a contact.
func (b *Book) Phone(name string) (Phone, error) {
	r, err := b.lookup(name)
	if err != nil {
		return Phone{}, err
	}
	return r.Phone(), nil
}

// AddBirthday sets or overwrites the birthday of an existing contact.
func (b *Book) AddBirthday(name, birthday string) error {
	r, err := b.lookup(name)
	if err != nil {
		return err
	}
	return r.SetBirthday(birthday)
}

// ShowBirthday describes the birthday of an existing contact.
func (b *Book) ShowBirthday(name string) (string, error) {
	r, err := b.lookup(name)
	if err != nil {
		return "", err
	}
	bday, ok := r.Birthday()
	if !ok {
		return fmt.Sprintf("%s has no birthday set", r.Name()), nil
	}
	return fmt.Sprintf("%s was born %s", r.Name(), bday.Value()), nil
}

// All yields every contact in insertion order. The sequence may be ranged
// over any number of times.
func (b *Book) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		for _, name := range b.order {
			if !yield(name, b.records[name]) {
				return
			}
		}
	}
}

// Upcoming pairs a contact name with its birthday.
type Upcoming struct {
	Name     string
	Birthday Birthday
}

func (u Upcoming) String() string {
	return fmt.Sprintf("(%s, %s)", u.Name, u.Birthday)
}

// UpcomingBirthdays returns the contacts whose birthday falls in the same ISO
// week number as now.
//
// The week is taken from the stored date itself, birth year included, not
// from this year's anniversary. A birthday on 15.06.1990 therefore matches
// the week number of 15 June 1990, which can differ from the week the
// anniversary falls in.
func (b *Book) UpcomingBirthdays(now time.Time) []Upcoming {
	_, week := now.ISOWeek()

	var out []Upcoming
	for name, r := range b.All() {
		bday, ok := r.Birthday()
		if !ok {
			continue
		}
		if _, w := bday.Date().ISOWeek(); w == week {
			out = append(out, Upcoming{Name: name, Birthday: bday})
		}
	}
	return out
}
