// Package ui implements the terminal prompts for the interactive session.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/rcliao/recordkeeper/internal/session"
)

// Prompter implements session.Prompter with huh forms. Each prompt runs as
// its own form.
type Prompter struct {
	in         io.Reader
	lines      *bufio.Reader
	out        io.Writer
	accessible bool
	theme      *huh.Theme
	styles     Styles
}

// NewPrompter returns a prompter reading from in and writing to out. When in
// is not a terminal the prompts fall back to huh's line-based accessible mode
// so piped input works.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:         in,
		lines:      bufio.NewReader(in),
		out:        out,
		accessible: !isTerminal(in),
		theme:      newTheme(),
		styles:     DefaultStyles(),
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// run shows field as a one-field form. In accessible mode the form reads a
// single answer line that accept has already checked, so huh never re-prompts
// on its own and a closed input ends the session.
func (p *Prompter) run(field huh.Field, accept func(string) (string, error)) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme).
		WithAccessible(p.accessible).
		WithOutput(p.out)
	if !p.accessible {
		return mapErr(form.WithInput(p.in).Run())
	}

	feed := &lineFeed{src: p.lines, out: p.out, accept: accept}
	if err := form.WithInput(feed).Run(); err != nil {
		return mapErr(err)
	}
	if feed.err != nil {
		return mapErr(feed.err)
	}
	return nil
}

// mapErr turns a user abort or exhausted input into session.ErrAborted.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted), errors.Is(err, io.EOF):
		return session.ErrAborted
	default:
		return fmt.Errorf("prompt: %w", err)
	}
}

// lineFeed hands one accepted line of src to a huh field and then reports
// EOF. Rejected lines are answered with the reason and the next line is read.
type lineFeed struct {
	src    *bufio.Reader
	out    io.Writer
	accept func(string) (string, error)
	buf    []byte
	read   bool
	err    error
}

func (l *lineFeed) Read(b []byte) (int, error) {
	if !l.read {
		l.read = true
		l.buf, l.err = l.next()
	}
	if len(l.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(b, l.buf)
	l.buf = l.buf[n:]
	return n, nil
}

func (l *lineFeed) next() ([]byte, error) {
	for {
		line, err := l.src.ReadString('\n')
		if line == "" && err != nil {
			return nil, err
		}
		text := strings.TrimRight(line, "\r\n")
		if l.accept != nil {
			var verr error
			if text, verr = l.accept(text); verr != nil {
				fmt.Fprintln(l.out, verr)
				continue
			}
		}
		return []byte(text + "\n"), nil
	}
}

func (p *Prompter) Select(title string, options []session.Option) (string, error) {
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value)
	}
	var selected string
	sel := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&selected)
	if err := p.run(sel, acceptChoice(len(options))); err != nil {
		return "", err
	}
	return selected, nil
}

func (p *Prompter) Input(title string) (string, error) {
	var value string
	inp := huh.NewInput().
		Title(title).
		Value(&value)
	if err := p.run(inp, nil); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (p *Prompter) Confirm(title string) (bool, error) {
	var ok bool
	c := huh.NewConfirm().
		Title(title).
		Affirmative("Sí").
		Negative("No").
		Value(&ok)
	if err := p.run(c, acceptYesNo); err != nil {
		return false, err
	}
	return ok, nil
}

// acceptChoice takes the 1-based position of one of n options.
func acceptChoice(n int) func(string) (string, error) {
	return func(s string) (string, error) {
		s = strings.TrimSpace(s)
		if i, err := strconv.Atoi(s); err != nil || i < 1 || i > n {
			return "", fmt.Errorf("Opción inválida: ingresa un número entre 1 y %d.", n)
		}
		return s, nil
	}
}

// acceptYesNo takes Spanish or English yes/no answers; empty means no.
func acceptYesNo(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "si", "sí", "y", "yes":
		return "y", nil
	case "n", "no", "":
		return "n", nil
	default:
		return "", errors.New("Responde s o n.")
	}
}

func (p *Prompter) Notify(level session.Level, msg string) {
	fmt.Fprintln(p.out, p.styles.Message(level, msg))
}

func (p *Prompter) Display(title string, lines []string) {
	fmt.Fprintln(p.out, p.styles.Box(title, lines))
}
