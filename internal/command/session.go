package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smileynet/assistant/internal/contact"
	"github.com/smileynet/assistant/internal/storage"
)

// Reply is the outcome of one executed line.
type Reply struct {
	Text string // Message for the user; may be empty.
	Quit bool   // The session asked to end.
}

// Saver persists the book. storage.Store satisfies it.
type Saver interface {
	Save(ctx context.Context, b *contact.Book) error
}

var _ Saver = (storage.Store)(nil)

// Session runs commands against one address book. It is not safe for
// concurrent use.
type Session struct {
	book  *contact.Book
	saver Saver
	now   func() time.Time
	dirty bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used by upcoming-birthdays.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a Session over book that persists through saver.
func NewSession(book *contact.Book, saver Saver, opts ...Option) *Session {
	s := &Session{book: book, saver: saver, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book returns the book the session operates on.
func (s *Session) Book() *contact.Book { return s.book }

// Dirty reports whether the book changed since it was last saved.
func (s *Session) Dirty() bool { return s.dirty }

// Save persists the book and clears the dirty flag.
func (s *Session) Save(ctx context.Context) error {
	if err := s.saver.Save(ctx, s.book); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Execute runs a single line of input. Domain errors are reported in the
// reply text and never end the session.
func (s *Session) Execute(ctx context.Context, line string) Reply {
	cmd, args := Parse(line)
	if cmd == "" {
		return Reply{}
	}
	slog.Debug("executing command", "command", cmd, "args", len(args))

	switch cmd {
	case CmdContacts:
		return Reply{Text: RenderHelp(ContactGroup)}
	case CmdBirthdays:
		return Reply{Text: RenderHelp(BirthdayGroup)}
	case CmdHelp:
		return Reply{Text: RenderHelp(BasicGroup, ContactGroup, BirthdayGroup)}
	case CmdSave:
		if err := s.Save(ctx); err != nil {
			slog.Warn("save failed", "err", err)
			return Reply{Text: "Could not save address book: " + err.Error()}
		}
		return Reply{Text: "Address book saved."}
	case CmdExit, CmdClose:
		if err := s.Save(ctx); err != nil {
			slog.Warn("save on exit failed", "err", err)
			return Reply{Text: "Could not save address book: " + err.Error()}
		}
		return Reply{Text: "Good bye!", Quit: true}
	}

	h, ok := handlers[cmd]
	if !ok {
		return Reply{Text: "Invalid command."}
	}
	if len(args) < h.minArgs || len(args) > h.maxArgs {
		return Reply{Text: h.usage}
	}
	text, err := h.run(s, args)
	if err != nil {
		return Reply{Text: describe(err, args)}
	}
	return Reply{Text: text}
}

// handler binds a book command to its argument bounds.
type handler struct {
	minArgs, maxArgs int
	usage            string
	run              func(s *Session, args []string) (string, error)
}

var handlers = map[string]handler{
	CmdAdd: {
		minArgs: 2, maxArgs: 3,
		usage: "You should add name and phone (birthday is optional)",
		run: func(s *Session, args []string) (string, error) {
			var bday string
			if len(args) == 3 {
				bday = args[2]
			}
			if err := s.book.Add(args[0], args[1], bday); err != nil {
				return "", err
			}
			s.dirty = true
			return "Contact added.", nil
		},
	},
	CmdChange: {
		minArgs: 2, maxArgs: 2,
		usage: "Usage: change <name> <phone>",
		run: func(s *Session, args []string) (string, error) {
			msg, err := s.book.ChangePhone(args[0], args[1])
			if err != nil {
				return "", err
			}
			s.dirty = true
			return msg, nil
		},
	},
	CmdDelete: {
		minArgs: 1, maxArgs: 1,
		usage: "Usage: delete <name>",
		run: func(s *Session, args []string) (string, error) {
			msg, err := s.book.Delete(args[0])
			if err != nil {
				return "", err
			}
			s.dirty = true
			return msg, nil
		},
	},
	CmdPhone: {
		minArgs: 1, maxArgs: 1,
		usage: "Usage: phone <name>",
		run: func(s *Session, args []string) (string, error) {
			p, err := s.book.Phone(args[0])
			if err != nil {
				return "", err
			}
			return p.String(), nil
		},
	},
	CmdAll: {
		usage: "Usage: all",
		run: func(s *Session, _ []string) (string, error) {
			return listAll(s.book), nil
		},
	},
	CmdAddBirthday: {
		minArgs: 2, maxArgs: 2,
		usage: "Usage: add-birthday <name> <dd.mm.yyyy>",
		run: func(s *Session, args []string) (string, error) {
			if err := s.book.AddBirthday(args[0], args[1]); err != nil {
				return "", err
			}
			s.dirty = true
			return "Birthday added.", nil
		},
	},
	CmdShowBirthday: {
		minArgs: 1, maxArgs: 1,
		usage: "Usage: show-birthday <name>",
		run: func(s *Session, args []string) (string, error) {
			return s.book.ShowBirthday(args[0])
		},
	},
	CmdUpcoming: {
		usage: "Usage: upcoming-birthdays",
		run: func(s *Session, _ []string) (string, error) {
			return listUpcoming(s.book.UpcomingBirthdays(s.now())), nil
		},
	},
}

var separator = strings.Repeat("∞", 45)

func listAll(b *contact.Book) string {
	if b.Len() == 0 {
		return "No contacts saved."
	}
	var sb strings.Builder
	for name, r := range b.All() {
		fmt.Fprintf(&sb, "Contact: %s\n%s\n%s\n", name, r, separator)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func listUpcoming(list []contact.Upcoming) string {
	if len(list) == 0 {
		return "No birthdays this week."
	}
	lines := make([]string, len(list))
	for i, u := range list {
		lines[i] = u.String()
	}
	return strings.Join(lines, "\n")
}

// describe converts an error from the book into a message for the user.
func describe(err error, args []string) string {
	var name string
	if len(args) > 0 {
		name = args[0]
	}

	var ve *contact.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Reason
	case errors.Is(err, contact.ErrNotFound):
		return "Contact not found: " + name
	case errors.Is(err, contact.ErrDuplicate):
		return "Contact already exists: " + name
	default:
		slog.Error("unexpected command error", "err", err)
		return "Error: " + err.Error()
	}
}
