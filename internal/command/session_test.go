package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smileynet/assistant/internal/contact"
)

// recordingSaver counts saves and can be told to fail.
type recordingSaver struct {
	saves int
	err   error
	last  *contact.Book
}

func (r *recordingSaver) Save(_ context.Context, b *contact.Book) error {
	if r.err != nil {
		return r.err
	}
	r.saves++
	r.last = b
	return nil
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	return NewSession(contact.NewBook(), saver, opts...), saver
}

// run executes lines in order and returns the reply of the last one.
func run(t *testing.T, s *Session, lines ...string) Reply {
	t.Helper()
	var r Reply
	for _, l := range lines {
		r = s.Execute(context.Background(), l)
	}
	return r
}

func TestParse(t *testing.T) {
	tests := []struct {
		line     string
		wantCmd  string
		wantArgs []string
	}{
		{line: "", wantCmd: ""},
		{line: "   ", wantCmd: ""},
		{line: "ALL", wantCmd: "all"},
		{line: "  add  Alice 1234567890 ", wantCmd: "add", wantArgs: []string{"Alice", "1234567890"}},
		{line: "Show-Birthday Alice", wantCmd: "show-birthday", wantArgs: []string{"Alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, args := Parse(tt.line)
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if strings.Join(args, "|") != strings.Join(tt.wantArgs, "|") {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestParse_KeepsArgumentCase(t *testing.T) {
	_, args := Parse("phone Alice")
	if args[0] != "Alice" {
		t.Errorf("args[0] = %q, want %q", args[0], "Alice")
	}
}

func TestSession_AddAndPhone(t *testing.T) {
	s, _ := newTestSession(t)

	if r := run(t, s, "add Alice 1234567890 01.01.1990"); r.Text != "Contact added." {
		t.Errorf("add reply = %q", r.Text)
	}
	if r := run(t, s, "phone Alice"); r.Text != "1234567890" {
		t.Errorf("phone reply = %q, want %q", r.Text, "1234567890")
	}
	if r := run(t, s, "show-birthday Alice"); r.Text != "Alice was born 01.01.1990" {
		t.Errorf("show-birthday reply = %q", r.Text)
	}
	if !s.Dirty() {
		t.Error("Dirty() = false after add, want true")
	}
}

func TestSession_ErrorsBecomeMessages(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		line  string
		want  string
	}{
		{name: "short phone", line: "add Bob 12345", want: "Phone number must be a 10-digit string"},
		{name: "bad birthday", line: "add Bob 1234567890 31.02.2020", want: "Date is not correct format. Format should be dd.mm.yyyy"},
		{name: "duplicate", setup: []string{"add Bob 1234567890"}, line: "add Bob 0987654321", want: "Contact already exists: Bob"},
		{name: "change unknown", line: "change Ghost 1234567890", want: "Contact not found: Ghost"},
		{name: "delete unknown", line: "delete Ghost", want: "Contact not found: Ghost"},
		{name: "phone unknown", line: "phone Ghost", want: "Contact not found: Ghost"},
		{name: "add-birthday unknown", line: "add-birthday Ghost 01.01.1990", want: "Contact not found: Ghost"},
		{name: "show-birthday unknown", line: "show-birthday Ghost", want: "Contact not found: Ghost"},
		{name: "unknown command", line: "dance", want: "Invalid command."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			run(t, s, tt.setup...)

			r := run(t, s, tt.line)

			if r.Text != tt.want {
				t.Errorf("reply = %q, want %q", r.Text, tt.want)
			}
			if r.Quit {
				t.Error("domain errors must not end the session")
			}
		})
	}
}

func TestSession_WrongArgumentCounts(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "add", want: "You should add name and phone (birthday is optional)"},
		{line: "add Alice", want: "You should add name and phone (birthday is optional)"},
		{line: "add Alice 1234567890 01.01.1990 extra", want: "You should add name and phone (birthday is optional)"},
		{line: "change Alice", want: "Usage: change <name> <phone>"},
		{line: "delete", want: "Usage: delete <name>"},
		{line: "phone", want: "Usage: phone <name>"},
		{line: "phone a b", want: "Usage: phone <name>"},
		{line: "add-birthday Alice", want: "Usage: add-birthday <name> <dd.mm.yyyy>"},
		{line: "show-birthday", want: "Usage: show-birthday <name>"},
		{line: "all now", want: "Usage: all"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, _ := newTestSession(t)
			if r := run(t, s, tt.line); r.Text != tt.want {
				t.Errorf("reply = %q, want %q", r.Text, tt.want)
			}
		})
	}
}

func TestSession_DeleteThenPhone(t *testing.T) {
	s, _ := newTestSession(t)

	r := run(t, s, "add Alice 1234567890", "delete Alice")
	if r.Text != "Contact was deleted" {
		t.Errorf("delete reply = %q", r.Text)
	}
	if r := run(t, s, "phone Alice"); r.Text != "Contact not found: Alice" {
		t.Errorf("phone reply = %q", r.Text)
	}
}

func TestSession_ChangePhone(t *testing.T) {
	s, _ := newTestSession(t)

	r := run(t, s, "add Alice 1234567890", "change Alice 5555555555")

	if r.Text != "Alice changed phone number to 5555555555" {
		t.Errorf("change reply = %q", r.Text)
	}
}

func TestSession_All(t *testing.T) {
	s, _ := newTestSession(t)
	if r := run(t, s, "all"); r.Text != "No contacts saved." {
		t.Errorf("all (empty) = %q", r.Text)
	}

	r := run(t, s, "add Alice 1234567890 01.01.1990", "add Bob 0987654321", "all")

	for _, want := range []string{
		"Contact: Alice",
		"Name: Alice Phone: 1234567890 Birthday: 01.01.1990",
		"Contact: Bob",
		"Name: Bob Phone: 0987654321 Birthday: None",
		separator,
	} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("all reply missing %q:\n%s", want, r.Text)
		}
	}
	if strings.Index(r.Text, "Alice") > strings.Index(r.Text, "Bob") {
		t.Error("all should list contacts in insertion order")
	}
}

func TestSession_UpcomingBirthdays(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s, _ := newTestSession(t, WithClock(func() time.Time { return now }))

	if r := run(t, s, "upcoming-birthdays"); r.Text != "No birthdays this week." {
		t.Errorf("upcoming (empty) = %q", r.Text)
	}

	r := run(t, s,
		"add Alice 1234567890 01.01.1990",
		"add Bob 0987654321 01.07.1985",
		"upcoming-birthdays",
	)
	if r.Text != "(Alice, Birthday date is: 01.01.1990)" {
		t.Errorf("upcoming reply = %q", r.Text)
	}
}

func TestSession_HelpTables(t *testing.T) {
	s, _ := newTestSession(t)

	tests := []struct {
		line string
		want []string
	}{
		{line: "contacts", want: []string{"Command", "Description", "add <name> <phone> [birthday]", "Show all contacts"}},
		{line: "birthdays", want: []string{"add-birthday", "upcoming-birthdays", "exit or close"}},
		{line: "help", want: []string{"contacts", "delete <name>", "show-birthday <name>"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			r := run(t, s, tt.line)
			for _, w := range tt.want {
				if !strings.Contains(r.Text, w) {
					t.Errorf("%s output missing %q:\n%s", tt.line, w, r.Text)
				}
			}
		})
	}
}

func TestSession_ExitSaves(t *testing.T) {
	for _, cmd := range []string{"exit", "close", "EXIT"} {
		t.Run(cmd, func(t *testing.T) {
			s, saver := newTestSession(t)
			run(t, s, "add Alice 1234567890")

			r := run(t, s, cmd)

			if !r.Quit {
				t.Error("Quit = false, want true")
			}
			if r.Text != "Good bye!" {
				t.Errorf("reply = %q, want %q", r.Text, "Good bye!")
			}
			if saver.saves != 1 || saver.last == nil || !saver.last.Has("Alice") {
				t.Errorf("saves = %d, want the book saved once", saver.saves)
			}
			if s.Dirty() {
				t.Error("Dirty() = true after save")
			}
		})
	}
}

func TestSession_ExitSaveFailureKeepsSessionOpen(t *testing.T) {
	s, saver := newTestSession(t)
	saver.err = errors.New("disk full")

	r := run(t, s, "exit")

	if r.Quit {
		t.Error("Quit = true after failed save, want false")
	}
	if !strings.Contains(r.Text, "disk full") {
		t.Errorf("reply = %q, want save error", r.Text)
	}
}

func TestSession_SaveCommand(t *testing.T) {
	s, saver := newTestSession(t)

	r := run(t, s, "add Alice 1234567890", "save")

	if r.Quit {
		t.Error("save must not end the session")
	}
	if r.Text != "Address book saved." {
		t.Errorf("reply = %q", r.Text)
	}
	if saver.saves != 1 {
		t.Errorf("saves = %d, want 1", saver.saves)
	}
}

func TestSession_BlankLine(t *testing.T) {
	s, _ := newTestSession(t)
	if r := run(t, s, "   "); r != (Reply{}) {
		t.Errorf("blank line reply = %+v, want zero", r)
	}
}

func TestSession_ReadOnlyCommandsStayClean(t *testing.T) {
	s := NewSession(contact.NewBook(), &recordingSaver{})
	_ = s.Book().Add("Alice", "1234567890", "")

	run(t, s, "phone Alice", "all", "show-birthday Alice", "upcoming-birthdays", "add Alice 1234567890")

	if s.Dirty() {
		t.Error("Dirty() = true after read-only and failed commands")
	}
}
