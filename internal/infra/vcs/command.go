package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

// tool runs one VCS command-line program inside the repository root.
type tool struct {
	runner  domain.CommandRunner
	program string
	dir     string
	env     []string
}

// run executes the tool and returns the raw result.
func (t tool) run(ctx context.Context, args ...string) (*domain.ExecResult, error) {
	cmd := domain.NewCommand(t.program, args, t.dir)
	cmd.Env = t.env
	res, err := t.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", t.program, firstArg(args), err)
	}
	return res, nil
}

// output executes the tool and returns stdout, failing on non-zero exit.
func (t tool) output(ctx context.Context, args ...string) (string, error) {
	res, err := t.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", t.failure(args, res)
	}
	return res.Stdout, nil
}

// exec executes the tool, failing on non-zero exit.
func (t tool) exec(ctx context.Context, args ...string) error {
	_, err := t.output(ctx, args...)
	return err
}

func (t tool) failure(args []string, res *domain.ExecResult) error {
	stderr := res.Stderr
	if strings.TrimSpace(stderr) == "" {
		stderr = res.Stdout
	}
	return &domain.CommandError{
		Command:  t.program,
		Args:     append([]string(nil), args...),
		ExitCode: res.ExitCode,
		Stderr:   stderr,
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// lines splits command output into trimmed, non-empty lines.
func lines(out string) []string {
	var result []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			result = append(result, l)
		}
	}
	return result
}
