// Package command implements the assistant's command surface: it parses a
// line of input, runs it against a contact.Book and turns the outcome,
// including domain errors, into text for the user.
package command

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Command names.
const (
	CmdContacts     = "contacts"
	CmdBirthdays    = "birthdays"
	CmdHelp         = "help"
	CmdSave         = "save"
	CmdAdd          = "add"
	CmdChange       = "change"
	CmdDelete       = "delete"
	CmdPhone        = "phone"
	CmdAll          = "all"
	CmdAddBirthday  = "add-birthday"
	CmdShowBirthday = "show-birthday"
	CmdUpcoming     = "upcoming-birthdays"
	CmdExit         = "exit"
	CmdClose        = "close"
)

// Parse splits a line into a lower-cased command and its arguments.
// A blank line yields an empty command.
func Parse(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// Entry describes one command for help output.
type Entry struct {
	Command     string
	Description string
}

// Group is a titled list of commands shown together in help output.
type Group struct {
	Title   string
	Entries []Entry
}

// Help groups, in the order they are introduced to the user.
var (
	BasicGroup = Group{
		Title: "basic",
		Entries: []Entry{
			{CmdContacts, "Displays contact commands"},
			{CmdBirthdays, "Displays birthday commands"},
			{CmdSave, "Save the address book"},
			{CmdHelp, "Displays all commands"},
		},
	}
	ContactGroup = Group{
		Title: "contact",
		Entries: []Entry{
			{"add <name> <phone> [birthday]", "Add a new contact"},
			{"change <name> <phone>", "Change contact information"},
			{"delete <name>", "Delete a contact"},
			{"phone <name>", "Show phone number of a contact"},
			{CmdAll, "Show all contacts"},
		},
	}
	BirthdayGroup = Group{
		Title: "birthday",
		Entries: []Entry{
			{"add-birthday <name> <dd.mm.yyyy>", "Add birthday to a contact"},
			{"show-birthday <name>", "Show birthday of a contact"},
			{CmdUpcoming, "Show who has birthdays this week"},
			{"exit or close", "Save and exit the program"},
		},
	}
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderHelp renders the given groups as one command/description table.
func RenderHelp(groups ...Group) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})).
		Headers("Command", "Description").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, g := range groups {
		for _, e := range g.Entries {
			t.Row(e.Command, e.Description)
		}
	}
	return t.Render()
}
