package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/smileynet/assistant"
	"github.com/smileynet/assistant/internal/command"
	"github.com/smileynet/assistant/internal/config"
	"github.com/smileynet/assistant/internal/contact"
	"github.com/smileynet/assistant/internal/logging"
	"github.com/smileynet/assistant/internal/storage"
	"github.com/smileynet/assistant/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// projectConfig is the per-directory config layer written by init.
const projectConfig = ".assistant/config.yaml"

// Globals are flags shared by every command. Set flags override config.
type Globals struct {
	Book     string `help:"Address book file (.json, .yaml, .db)." short:"b" type:"path"`
	LogLevel string `help:"Log level: debug, info, warn or error." name:"log-level"`
	Plain    bool   `help:"Force the line-based shell even if stdin/stdout is a TTY."`
}

// CLI is the top-level command structure for assistant.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Shell   ShellCmd         `cmd:"" default:"1" help:"Start the interactive shell (default)."`
	Exec    ExecCmd          `cmd:"" help:"Run a single shell command and exit."`
	Export  ExportCmd        `cmd:"" help:"Copy the address book to another file or format."`
	Init    InitCmd          `cmd:"" help:"Write a starter config to .assistant/config.yaml."`
}

// loadConfig loads layered config from user and project paths with env
// overrides, then applies command-line flags.
func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/assistant/config.yaml"),
		projectConfig,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if g.Book != "" {
		cfg.Book.Path = g.Book
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Plain {
		cfg.UI.Plain = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.Log.Level) // checked by Validate
	logging.Setup(level)
	return cfg, nil
}

// openBook opens the store for path and loads its book.
func openBook(ctx context.Context, path string) (storage.Store, *contact.Book, error) {
	store, err := storage.Open(path)
	if err != nil {
		return nil, nil, err
	}
	book, err := store.Load(ctx)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, book, nil
}

// --- Shell command ---

// ShellCmd runs the interactive shell.
type ShellCmd struct{}

// Run loads the book and starts the shell. The book is saved by the exit
// and close commands.
func (c *ShellCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}

	ctx := context.Background()
	store, book, err := openBook(ctx, cfg.Book.Path)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer store.Close()

	session := command.NewSession(book, store)
	shell := tui.NewShell(tui.ShellOptions{
		ForcePlain: cfg.UI.Plain,
		Executor:   session,
	})
	return shell.Run(ctx)
}

// --- Exec command ---

// ExecCmd runs one shell command non-interactively.
type ExecCmd struct {
	Args []string `arg:"" help:"Command and arguments, e.g. add Alice 1234567890."`
}

// Run loads the book, runs the command and saves if the book changed.
func (c *ExecCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	ctx := context.Background()
	store, book, err := openBook(ctx, cfg.Book.Path)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	defer store.Close()

	return c.run(ctx, os.Stdout, command.NewSession(book, store))
}

// run executes the command against session, enabling testable wiring.
func (c *ExecCmd) run(ctx context.Context, w io.Writer, session *command.Session) error {
	reply := session.Execute(ctx, strings.Join(c.Args, " "))
	if reply.Text != "" {
		_, _ = fmt.Fprintln(w, reply.Text)
	}
	if !session.Dirty() {
		return nil
	}
	if err := session.Save(ctx); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// --- Export command ---

// ErrDestinationExists indicates export would overwrite an existing file.
var ErrDestinationExists = errors.New("destination already exists")

// ExportCmd copies the book into another store.
type ExportCmd struct {
	Dest  string `arg:"" type:"path" help:"Destination file; its extension picks the format."`
	Force bool   `help:"Overwrite the destination if it exists."`
}

// Run loads the configured book and saves it to Dest.
func (c *ExportCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return c.run(context.Background(), os.Stdout, cfg.Book.Path)
}

// run exports the book at src, enabling testable wiring.
func (c *ExportCmd) run(ctx context.Context, w io.Writer, src string) error {
	if filepath.Clean(src) == filepath.Clean(c.Dest) {
		return fmt.Errorf("export: source and destination are the same file %q", src)
	}
	if _, err := os.Stat(c.Dest); err == nil && !c.Force {
		return fmt.Errorf("export: %w: %s (use --force)", ErrDestinationExists, c.Dest)
	}

	from, book, err := openBook(ctx, src)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer from.Close()

	to, err := storage.Open(c.Dest)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer to.Close()

	if err := to.Save(ctx, book); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d contacts to %s\n", book.Len(), c.Dest)
	return nil
}

// --- Init command ---

// InitCmd writes the starter config for the current directory.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config."`
}

// Run writes the starter config under the working directory.
func (c *InitCmd) Run() error {
	return c.run(os.Stdout, ".")
}

// run writes the starter config under dir, enabling testable wiring. A
// template at .assistant/templates/config.yaml replaces the embedded one.
func (c *InitCmd) run(w io.Writer, dir string) error {
	dest := filepath.Join(dir, projectConfig)
	if _, err := os.Stat(dest); err == nil && !c.Force {
		return fmt.Errorf("init: %w: %s (use --force)", ErrDestinationExists, dest)
	}

	templates := assistant.OverlayFS(filepath.Join(dir, ".assistant", "templates"), assistant.Templates)
	data, err := fs.ReadFile(templates, assistant.ConfigTemplate)
	if err != nil {
		return fmt.Errorf("init: reading template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("init: creating directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("init: writing %s: %w", dest, err)
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", dest)
	return nil
}

const (
	exitSuccess = 0
	exitFailure = 1
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	return exitFailure
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("assistant"),
		kong.Description("A command-line address book for names, phone numbers and birthdays."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
