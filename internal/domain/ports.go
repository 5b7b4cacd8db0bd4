package domain

import (
	"context"
	"time"
)

// CommandRunner runs external processes.
type CommandRunner interface {
	// Run executes cmd and captures its output. A non-zero exit status is
	// reported through ExecResult.ExitCode; err is set only when the
	// process could not be started or ctx was cancelled.
	Run(ctx context.Context, cmd *ExecCommand) (*ExecResult, error)

	// RunInteractive executes cmd attached to the terminal and waits for it.
	RunInteractive(ctx context.Context, cmd *ExecCommand) error
}

// VCS is the uniform operation set over the supported version control systems.
type VCS interface {
	// Root returns the repository root directory.
	Root() string
	// Backend returns the detected version control system.
	Backend() Backend
	// MetaDir returns the backend's private metadata directory
	// (e.g. .git), or "" when the backend keeps none inside the checkout.
	MetaDir() string

	CurrentBranch(ctx context.Context) (string, error)
	DefaultBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) (bool, error)

	// StartBranch creates name at the current revision and switches to it.
	// It fails with ErrBranchExists if name already exists.
	StartBranch(ctx context.Context, name string) error
	// CheckoutBranch switches to an existing branch. It is a no-op when
	// the working copy is already on name.
	CheckoutBranch(ctx context.Context, name string) error
	// CommitFile records exactly one file, leaving other pending changes alone.
	CommitFile(ctx context.Context, path, message string) error
	PushBranch(ctx context.Context, name string) error
	// DiscardBranch removes (or closes) a branch created by this tool.
	DiscardBranch(ctx context.Context, name string) error

	HasStagedChanges(ctx context.Context) (bool, error)
	HasUncommittedChanges(ctx context.Context) (bool, error)

	// RemoteURL returns the default remote location, or "" when none is configured.
	RemoteURL(ctx context.Context) (string, error)
	// AgentCommit finds the commit on branch tagged with Start-Agent-Branch.
	// It returns ErrAgentCommitNotFound when branch is not an agent branch.
	AgentCommit(ctx context.Context, branch string) (*AgentCommit, error)
	// ReadFileAt returns the content of the repository-relative path at the
	// tip of branch, without touching the working copy.
	ReadFileAt(ctx context.Context, branch, path string) (string, error)
}

// AgentCommit is the commit that started an agent branch.
type AgentCommit struct {
	ID      string
	Message string
	Files   []string // Repository-relative paths added by the commit
}

// TaskStore manages task description files.
type TaskStore interface {
	// RecordInitialTask writes and commits the first task file of branch.
	RecordInitialTask(ctx context.Context, content, branch, devshell string) (string, error)
	// AppendTask adds a follow-up section to the task file of branch.
	AppendTask(ctx context.Context, branch, content string) (string, error)
	// TaskFile returns the absolute path of the task file of branch.
	// The file must be present in the working copy.
	TaskFile(ctx context.Context, branch string) (string, error)
	// ReadTask returns the task file of branch. A branch that is not
	// checked out is read from its tip revision.
	ReadTask(ctx context.Context, branch string) (*TaskContent, error)
}

// Editor opens a file in an interactive text editor and blocks until it exits.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// Prompter asks the user yes/no questions.
type Prompter interface {
	// Confirm returns ErrNonInteractive when no answer can be obtained.
	Confirm(ctx context.Context, question string, defaultYes bool) (bool, error)
}

// DevshellCatalog lists the dev shells declared by the repository.
type DevshellCatalog interface {
	// Names returns ErrNoDevshells when the repository declares none.
	Names() ([]string, error)
}

// ConfigLoader loads configuration.
type ConfigLoader interface {
	// Load returns the merged configuration (repo + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigManager inspects and initializes configuration files.
type ConfigManager interface {
	GetRepoConfigInfo() ConfigInfo
	GetGlobalConfigInfo() ConfigInfo
	// InitRepoConfig writes the template and returns its path.
	// It fails with ErrConfigExists if the file is already present.
	InitRepoConfig() (string, error)
	InitGlobalConfig() (string, error)
}

// Logger writes operational logs scoped by branch.
// An empty branch writes to the global log only.
type Logger interface {
	Info(branch, category, msg string)
	Debug(branch, category, msg string)
	Warn(branch, category, msg string)
	Error(branch, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
