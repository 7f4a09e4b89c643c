package contact

import "fmt"

// Record is a single contact: an immutable name, a phone number and an
// optional birthday.
type Record struct {
	name     Name
	phone    Phone
	birthday *Birthday
}

// NewRecord validates every field and returns a Record. An empty birthday
// means the contact has none.
func NewRecord(name, phone, birthday string) (*Record, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	p, err := NewPhone(phone)
	if err != nil {
		return nil, err
	}
	r := &Record{name: n, phone: p}
	if birthday != "" {
		if err := r.SetBirthday(birthday); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Name returns the contact name.
func (r *Record) Name() Name { return r.name }

// Phone returns the current phone number.
func (r *Record) Phone() Phone { return r.phone }

// Birthday returns the birthday and whether one is set.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}
	return *r.birthday, true
}

// SetPhone replaces the phone number. On a validation failure the previous
// number is kept.
func (r *Record) SetPhone(raw string) error {
	p, err := NewPhone(raw)
	if err != nil {
		return err
	}
	r.phone = p
	return nil
}

// SetBirthday sets or replaces the birthday. On a validation failure the
// previous birthday is kept.
func (r *Record) SetBirthday(raw string) error {
	b, err := NewBirthday(raw)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

func (r *Record) String() string {
	bday := "None"
	if b, ok := r.Birthday(); ok {
		bday = b.Value()
	}
	return fmt.Sprintf("Name: %s Phone: %s Birthday: %s", r.name, r.phone, bday)
}
