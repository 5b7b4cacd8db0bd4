package testutil

import (
	"context"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

// FakeRunner is a scripted domain.CommandRunner. Responses are keyed by the
// full command line ("git checkout -q main"). A key with several queued
// results returns them in order and then keeps returning the last one.
// Unscripted commands succeed with empty output.
type FakeRunner struct {
	results        map[string][]*domain.ExecResult
	errs           map[string]error
	InteractiveErr error
	Calls          []string
	Commands       []*domain.ExecCommand
	Interactive    []string
}

// Ensure FakeRunner implements domain.CommandRunner interface.
var _ domain.CommandRunner = (*FakeRunner)(nil)

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		results: make(map[string][]*domain.ExecResult),
		errs:    make(map[string]error),
	}
}

// On queues a result for a command line.
func (f *FakeRunner) On(cmdline, stdout string, exitCode int) *FakeRunner {
	f.results[cmdline] = append(f.results[cmdline], &domain.ExecResult{Stdout: stdout, ExitCode: exitCode})
	return f
}

// Fail queues a failing result with stderr for a command line.
func (f *FakeRunner) Fail(cmdline, stderr string, exitCode int) *FakeRunner {
	f.results[cmdline] = append(f.results[cmdline], &domain.ExecResult{Stderr: stderr, ExitCode: exitCode})
	return f
}

// Error makes a command line fail to start.
func (f *FakeRunner) Error(cmdline string, err error) *FakeRunner {
	f.errs[cmdline] = err
	return f
}

// Run returns the scripted result for cmd.
func (f *FakeRunner) Run(_ context.Context, cmd *domain.ExecCommand) (*domain.ExecResult, error) {
	line := CommandLine(cmd)
	f.Calls = append(f.Calls, line)
	f.Commands = append(f.Commands, cmd)
	if err, ok := f.errs[line]; ok {
		return nil, err
	}
	queue := f.results[line]
	if len(queue) == 0 {
		return &domain.ExecResult{}, nil
	}
	res := *queue[0]
	if len(queue) > 1 {
		f.results[line] = queue[1:]
	}
	return &res, nil
}

// RunInteractive records the command and returns InteractiveErr.
func (f *FakeRunner) RunInteractive(_ context.Context, cmd *domain.ExecCommand) error {
	f.Interactive = append(f.Interactive, CommandLine(cmd))
	return f.InteractiveErr
}

// Called reports whether cmdline was run.
func (f *FakeRunner) Called(cmdline string) bool {
	for _, c := range f.Calls {
		if c == cmdline {
			return true
		}
	}
	return false
}

// CommandLine renders cmd as a space-joined string.
func CommandLine(cmd *domain.ExecCommand) string {
	return strings.Join(append([]string{cmd.Program}, cmd.Args...), " ")
}
