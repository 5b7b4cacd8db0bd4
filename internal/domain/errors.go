package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Usage errors. These are reported before the repository is touched.
var (
	ErrUsage                  = errors.New("invalid usage")
	ErrMultiplePromptSources  = fmt.Errorf("%w: --prompt and --prompt-file cannot be used together", ErrUsage)
	ErrDevshellWithoutBranch  = fmt.Errorf("%w: --devshell is only supported when creating a new branch", ErrUsage)
	ErrNonInteractiveNoPrompt = fmt.Errorf("%w: --non-interactive requires --prompt or --prompt-file", ErrUsage)
	ErrNonInteractiveNoPush   = fmt.Errorf("%w: --non-interactive requires --push-to-remote or [push] mode = \"always\"/\"never\"", ErrUsage)
	ErrInvalidBool            = fmt.Errorf("%w: invalid boolean value", ErrUsage)
	ErrEmptyDescription       = fmt.Errorf("%w: task description cannot be empty", ErrUsage)
)

// Validation errors.
var (
	ErrNotRepository     = errors.New("not inside a supported repository (git, fossil, bzr, hg)")
	ErrEmptyBranchName   = errors.New("branch name cannot be empty")
	ErrInvalidBranchName = errors.New("invalid branch name")
	ErrMainlineBranch    = errors.New("refusing to run on a main-line branch")
	ErrBranchExists      = errors.New("branch already exists")
	ErrEmptySlug         = errors.New("branch name produces an empty task file name")
	ErrTaskFileExists    = errors.New("task file already exists")
	ErrNotAgentBranch    = errors.New("not an agent branch")
	ErrUnknownDevshell   = errors.New("unknown dev shell")
	ErrNoDevshells       = errors.New("repository does not declare dev shells")
	ErrConfigExists      = errors.New("config file already exists")
)

// External process errors.
var (
	ErrEditorFailed        = errors.New("editor failed to start or exited with error")
	ErrNonInteractive      = errors.New("non-interactive environment, use --push-to-remote option")
	ErrVCSCommandFailed    = errors.New("vcs command failed")
	ErrDiscardUnsupported  = errors.New("discarding branches is not supported by this backend")
	ErrAgentCommitNotFound = errors.New("agent start commit not found")
)

// CommandError describes a failed VCS command invocation.
type CommandError struct {
	Command  string
	Stderr   string
	Args     []string
	ExitCode int
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed (exit %d)", e.Command, strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap lets errors.Is match ErrVCSCommandFailed.
func (e *CommandError) Unwrap() error {
	return ErrVCSCommandFailed
}
