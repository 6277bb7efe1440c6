// Package ui is the terminal-facing side of sshm: prompts, styled messages,
// the profile table and the interactive alias picker.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrInputClosed is returned when input ends before an answer was given.
var ErrInputClosed = errors.New("input closed")

// Console reads answers from In and writes messages to Out, errors to Err.
// Secrets are read without echo when In is a terminal.
type Console struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Theme Theme
}

// NewConsole returns a console over the given streams, themed for out.
func NewConsole(in io.Reader, out, errw io.Writer) *Console {
	return &Console{In: in, Out: out, Err: errw, Theme: LoadTheme(out)}
}

// Stdio returns a console on the process's standard streams.
func Stdio() *Console {
	return NewConsole(os.Stdin, os.Stdout, os.Stderr)
}

func (c *Console) Info(format string, args ...any) {
	fmt.Fprintln(c.Out, fmt.Sprintf(format, args...))
}

func (c *Console) Success(format string, args ...any) {
	fmt.Fprintln(c.Out, c.Theme.Success.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.Err, c.Theme.Warn.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Error(format string, args ...any) {
	fmt.Fprintln(c.Err, c.Theme.Error.Render(fmt.Sprintf(format, args...)))
}

// Ask prompts for a line. An empty answer yields def.
func (c *Console) Ask(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.Out, "%s %s: ", prompt, c.Theme.Dim.Render("["+def+"]"))
	} else {
		fmt.Fprintf(c.Out, "%s: ", prompt)
	}
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskInt prompts until the answer parses as an integer.
func (c *Console) AskInt(prompt string, def int) (int, error) {
	for {
		s, err := c.Ask(prompt, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		c.Error("%q is not a number", s)
	}
}

// AskSecret prompts for a value without echoing it. When In is not a
// terminal the line is read as-is, which keeps scripted input working.
func (c *Console) AskSecret(prompt string) (string, error) {
	fmt.Fprintf(c.Out, "%s: ", prompt)
	if f, ok := c.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.Out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return string(b), nil
	}
	line, err := c.readLine()
	fmt.Fprintln(c.Out)
	if err != nil {
		return "", err
	}
	return line, nil
}

// Choose prints numbered options and returns the chosen index. def is the
// index picked on an empty answer.
func (c *Console) Choose(prompt string, options []string, def int) (int, error) {
	for i, o := range options {
		fmt.Fprintf(c.Out, "  %s %s\n", c.Theme.Accent.Render(strconv.Itoa(i+1)+")"), o)
	}
	for {
		n, err := c.AskInt(prompt, def+1)
		if err != nil {
			return 0, err
		}
		if n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		c.Error("choose a number between 1 and %d", len(options))
	}
}

// Confirm asks a yes/no question.
func (c *Console) Confirm(prompt string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(c.Out, "%s [%s]: ", prompt, hint)
		line, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// readLine returns one line without its terminator. A final line without a
// newline is still returned; EOF with nothing read is ErrInputClosed.
//
// In is read one byte at a time and never past the newline: ssh inherits the
// same stdin afterwards and must see everything that follows.
func (c *Console) readLine() (string, error) {
	var line []byte
	var b [1]byte
	for {
		n, err := c.In.Read(b[:])
		if n > 0 {
			if b[0] == '\n' {
				return strings.TrimRight(string(line), "\r"), nil
			}
			line = append(line, b[0])
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF) && len(line) > 0:
			return strings.TrimRight(string(line), "\r"), nil
		case errors.Is(err, io.EOF):
			return "", ErrInputClosed
		default:
			return "", err
		}
	}
}
