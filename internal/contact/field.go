// Package contact holds the address book domain: validated field values,
// records, and the in-memory Book keyed by contact name.
package contact

import (
	"fmt"
	"time"
)

// BirthdayLayout is the accepted birthday format (dd.mm.yyyy). Single-digit
// day and month are accepted as well.
const BirthdayLayout = "2.1.2006"

// phoneLen is the exact number of digits a phone number must have.
const phoneLen = 10

// ValidationError reports a field value that failed validation.
type ValidationError struct {
	Field  string // "name", "phone" or "birthday".
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Name identifies a contact. It is the key of a Book.
type Name struct {
	value string
}

// NewName validates raw as a contact name.
func NewName(raw string) (Name, error) {
	if raw == "" {
		return Name{}, &ValidationError{Field: "name", Value: raw, Reason: "Name must not be empty"}
	}
	return Name{value: raw}, nil
}

func (n Name) String() string { return n.value }

// Phone is a 10-digit phone number.
type Phone struct {
	value string
}

// NewPhone validates raw as a phone number of exactly 10 ASCII digits.
func NewPhone(raw string) (Phone, error) {
	if len(raw) != phoneLen || !digitsOnly(raw) {
		return Phone{}, &ValidationError{Field: "phone", Value: raw, Reason: "Phone number must be a 10-digit string"}
	}
	return Phone{value: raw}, nil
}

func (p Phone) String() string { return p.value }

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Birthday is a calendar date given as dd.mm.yyyy. The raw input is kept
// verbatim so it serializes exactly as entered.
type Birthday struct {
	value string
	date  time.Time
}

// NewBirthday validates raw as a real calendar date in dd.mm.yyyy form.
// Non-existent dates such as 31.02.2020 are rejected.
func NewBirthday(raw string) (Birthday, error) {
	date, err := time.Parse(BirthdayLayout, raw)
	if err != nil {
		return Birthday{}, &ValidationError{
			Field:  "birthday",
			Value:  raw,
			Reason: "Date is not correct format. Format should be dd.mm.yyyy",
		}
	}
	return Birthday{value: raw, date: date}, nil
}

// Value returns the date as entered. This is the persisted form.
func (b Birthday) Value() string { return b.value }

// Date returns the parsed date at midnight UTC.
func (b Birthday) Date() time.Time { return b.date }

// String returns the display form, which differs from Value.
func (b Birthday) String() string {
	return "Birthday date is: " + b.value
}
