// Package editor runs the user's text editor against a scratch file.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/runoshun/agent-task/internal/domain"
)

// EnvVar overrides $EDITOR for agent-task only.
const EnvVar = "AGENT_TASK_EDITOR"

// DefaultProgram is used when nothing else is configured or installed.
const DefaultProgram = "nano"

// Fallbacks are probed on PATH, in order, when no editor is configured.
var Fallbacks = []string{"nano", "pico", "micro", "vim", "helix", "hx", "vi"}

// Command is a resolved editor invocation. The file path is appended to Args.
type Command struct {
	Program string
	Args    []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Program}, c.Args...), " ")
}

// ResolveWith picks the editor from, in order: configured, $AGENT_TASK_EDITOR,
// $EDITOR, the first fallback found by lookPath, and DefaultProgram.
// Values may carry arguments and are split with shell quoting rules.
func ResolveWith(configured string, getenv func(string) string, lookPath func(string) (string, error)) (Command, error) {
	for _, v := range []string{configured, getenv(EnvVar), getenv("EDITOR")} {
		if strings.TrimSpace(v) == "" {
			continue
		}
		parts, err := shlex.Split(v)
		if err != nil {
			return Command{}, fmt.Errorf("parse editor command %q: %w", v, err)
		}
		if len(parts) == 0 {
			continue
		}
		return Command{Program: parts[0], Args: parts[1:]}, nil
	}
	for _, name := range Fallbacks {
		if _, err := lookPath(name); err == nil {
			return Command{Program: name}, nil
		}
	}
	return Command{Program: DefaultProgram}, nil
}

// Resolve is ResolveWith using the process environment and PATH.
func Resolve(configured string) (Command, error) {
	return ResolveWith(configured, os.Getenv, exec.LookPath)
}

// Client implements domain.Editor.
type Client struct {
	runner domain.CommandRunner
	cmd    Command
}

// Ensure Client implements domain.Editor interface.
var _ domain.Editor = (*Client)(nil)

// New creates an editor client for a resolved command.
func New(cmd Command, runner domain.CommandRunner) *Client {
	return &Client{cmd: cmd, runner: runner}
}

// Command returns the resolved editor command.
func (c *Client) Command() Command {
	return c.cmd
}

// Edit opens path in the editor and waits for it to exit.
func (c *Client) Edit(ctx context.Context, path string) error {
	args := append(append([]string(nil), c.cmd.Args...), path)
	if err := c.runner.RunInteractive(ctx, domain.NewCommand(c.cmd.Program, args, "")); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrEditorFailed, c.cmd.Program, err)
	}
	return nil
}
