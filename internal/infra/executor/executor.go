// Package executor provides command execution functionality.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/runoshun/agent-task/internal/domain"
)

// Client implements domain.CommandRunner.
type Client struct{}

// NewClient creates a new command executor client.
func NewClient() *Client {
	return &Client{}
}

// Ensure Client implements domain.CommandRunner interface.
var _ domain.CommandRunner = (*Client)(nil)

// Run executes the command with stdin closed and captures stdout and stderr.
// Non-zero exit codes are returned in the result, not as an error.
func (c *Client) Run(ctx context.Context, cmd *domain.ExecCommand) (*domain.ExecResult, error) {
	// #nosec G204 - cmd.Program and cmd.Args come from trusted adapter code
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	configure(execCmd, cmd)

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()
	res := &domain.ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("run %s: %w", cmd.Program, ctx.Err())
	}
	return nil, fmt.Errorf("start %s: %w", cmd.Program, err)
}

// RunInteractive runs a command with stdin/stdout/stderr connected to the terminal.
func (c *Client) RunInteractive(ctx context.Context, cmd *domain.ExecCommand) error {
	// #nosec G204 - cmd.Program and cmd.Args come from trusted adapter code
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	configure(execCmd, cmd)
	execCmd.Stdin = os.Stdin
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	return execCmd.Run()
}

func configure(execCmd *exec.Cmd, cmd *domain.ExecCommand) {
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}
}
