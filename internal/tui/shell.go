// Package tui runs the interactive assistant shell: a Bubble Tea interface
// when attached to a terminal, a plain line loop otherwise.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/assistant/internal/command"
)

// Prompt is shown before each line of input.
const Prompt = "Enter a command: "

// Welcome is printed when a shell starts.
const Welcome = "Welcome to the assistant bot!"

// Executor runs one line of input. *command.Session implements it.
type Executor interface {
	Execute(ctx context.Context, line string) command.Reply
}

var _ Executor = (*command.Session)(nil)

// Shell reads commands until the executor asks to quit.
type Shell interface {
	Run(ctx context.Context) error
}

// ShellOptions configures shell creation.
type ShellOptions struct {
	In         io.Reader // Input source (default: os.Stdin).
	Out        io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force the line loop even if TTY.
	Executor   Executor
}

// NewShell returns a TUI shell when both ends are a TTY, or a plain line
// shell otherwise. ForcePlain overrides TTY detection.
func NewShell(opts ShellOptions) Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.ForcePlain || !isTTY(opts.In) || !isTTY(opts.Out) {
		return &PlainShell{in: opts.In, out: opts.Out, exec: opts.Executor}
	}
	return &TUIShell{in: opts.In, out: opts.Out, exec: opts.Executor}
}

// isTTY reports whether v is a file connected to a terminal.
func isTTY(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainShell prompts for one command per line.
type PlainShell struct {
	in   io.Reader
	out  io.Writer
	exec Executor
}

// NewPlainShell creates a PlainShell reading from in and writing to out.
func NewPlainShell(in io.Reader, out io.Writer, exec Executor) *PlainShell {
	return &PlainShell{in: in, out: out, exec: exec}
}

// Run loops until the executor replies with Quit. End of input is treated
// as the close command, so the book is saved.
func (s *PlainShell) Run(ctx context.Context) error {
	_, _ = fmt.Fprintln(s.out, Welcome)
	_, _ = fmt.Fprintln(s.out, command.RenderHelp(command.BasicGroup))

	sc := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = fmt.Fprint(s.out, Prompt)
		if !sc.Scan() {
			break
		}
		reply := s.exec.Execute(ctx, sc.Text())
		if reply.Text != "" {
			_, _ = fmt.Fprintln(s.out, reply.Text)
		}
		if reply.Quit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("shell: reading input: %w", err)
	}

	_, _ = fmt.Fprintln(s.out)
	reply := s.exec.Execute(ctx, command.CmdClose)
	if reply.Text != "" {
		_, _ = fmt.Fprintln(s.out, reply.Text)
	}
	if !reply.Quit {
		return errors.New("shell: input closed before the address book was saved")
	}
	return nil
}

// TUIShell runs the shell as a Bubble Tea program. Falls back to
// PlainShell if the program fails to start.
type TUIShell struct {
	in   io.Reader
	out  io.Writer
	exec Executor
}

// Run starts the Bubble Tea program and blocks until it exits.
func (s *TUIShell) Run(ctx context.Context) error {
	p := tea.NewProgram(NewModel(ctx, s.exec),
		tea.WithContext(ctx),
		tea.WithInput(s.in),
		tea.WithOutput(s.out),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return ctx.Err()
		}
		slog.Warn("terminal UI failed, falling back to plain shell", "err", err)
		plain := &PlainShell{in: s.in, out: s.out, exec: s.exec}
		return plain.Run(ctx)
	}

	if m, ok := final.(Model); ok && m.Aborted() {
		slog.Info("shell aborted, address book not saved")
	}
	return nil
}
