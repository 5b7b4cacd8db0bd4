// Package prompter asks the user yes/no questions on the terminal.
package prompter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/runoshun/agent-task/internal/domain"
)

// Client implements domain.Prompter. On a terminal it renders a huh
// confirm field; otherwise it reads a single answer line from in.
type Client struct {
	in         io.Reader
	out        io.Writer
	isTerminal func() bool
}

// Ensure Client implements domain.Prompter interface.
var _ domain.Prompter = (*Client)(nil)

// New creates a prompter bound to the process stdin and stderr.
func New() *Client {
	return &Client{
		in:  os.Stdin,
		out: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // fd fits in int
		},
	}
}

// NewWithIO creates a line-based prompter that never uses the form UI.
func NewWithIO(in io.Reader, out io.Writer) *Client {
	return &Client{in: in, out: out, isTerminal: func() bool { return false }}
}

// Confirm asks question and returns the answer.
// A closed input yields domain.ErrNonInteractive.
func (c *Client) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	if c.isTerminal() {
		return c.confirmForm(ctx, question, defaultYes)
	}
	return c.confirmLine(ctx, question, defaultYes)
}

func (c *Client) confirmForm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	value := defaultYes
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&value),
		),
	).WithOutput(c.out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirm: %w", err)
	}
	return value, nil
}

func (c *Client) confirmLine(ctx context.Context, question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	_, _ = fmt.Fprintf(c.out, "%s %s: ", question, hint)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(c.in).ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	var a answer
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a = <-ch:
	}

	if a.err != nil && (!errors.Is(a.err, io.EOF) || a.line == "") {
		if errors.Is(a.err, io.EOF) {
			return false, domain.ErrNonInteractive
		}
		return false, fmt.Errorf("read answer: %w", a.err)
	}
	return parseAnswer(a.line, defaultYes), nil
}

// parseAnswer treats anything starting with y as yes and n as no.
func parseAnswer(line string, defaultYes bool) bool {
	s := strings.ToLower(strings.TrimSpace(line))
	switch {
	case s == "":
		return defaultYes
	case strings.HasPrefix(s, "y"):
		return true
	case strings.HasPrefix(s, "n"):
		return false
	default:
		return defaultYes
	}
}
