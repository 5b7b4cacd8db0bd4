// Package vcs provides a uniform repository handle over git, fossil, bzr and hg.
// All mutations are performed by the respective command-line tools.
package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

// Options customizes backend behavior.
type Options struct {
	Remote        string // Push target; backend default when empty
	DefaultBranch string // Overrides default branch detection
}

// backend is the per-VCS command vocabulary.
type backend interface {
	currentBranch(ctx context.Context) (string, error)
	defaultBranch(ctx context.Context) (string, error)
	branchExists(ctx context.Context, name string) (bool, error)
	startBranch(ctx context.Context, name string) error
	checkout(ctx context.Context, name string) error
	commitFile(ctx context.Context, rel, message string) error
	push(ctx context.Context, name string) error
	discard(ctx context.Context, name string) error
	hasStaged(ctx context.Context) (bool, error)
	hasUncommitted(ctx context.Context) (bool, error)
	remoteURL(ctx context.Context) (string, error)
	agentCommit(ctx context.Context, branch string) (*domain.AgentCommit, error)
	readFile(ctx context.Context, branch, rel string) (string, error)
}

// Repo is the repository handle. The backend is selected once at construction.
type Repo struct {
	impl          backend
	root          string
	metaDir       string
	kind          domain.Backend
	defaultBranch string
}

// Ensure Repo implements domain.VCS interface.
var _ domain.VCS = (*Repo)(nil)

// Open detects the repository containing start and returns a handle for it.
func Open(start string, runner domain.CommandRunner, opts Options) (*Repo, error) {
	root, kind, err := DetectRoot(start)
	if err != nil {
		return nil, err
	}
	return New(root, kind, runner, opts)
}

// New returns a handle for a repository whose root and backend are known.
func New(root string, kind domain.Backend, runner domain.CommandRunner, opts Options) (*Repo, error) {
	r := &Repo{
		root:          root,
		kind:          kind,
		defaultBranch: opts.DefaultBranch,
	}
	t := tool{runner: runner, program: kind.Program(), dir: root}

	switch kind {
	case domain.BackendGit:
		t.env = gitEnv
		r.metaDir = gitMetaDir(root)
		r.impl = &gitBackend{tool: t, root: root, remote: opts.Remote}
	case domain.BackendHg:
		t.env = hgEnv
		r.metaDir = filepath.Join(root, ".hg")
		r.impl = &hgBackend{tool: t, remote: opts.Remote}
	case domain.BackendBzr:
		r.metaDir = filepath.Join(root, ".bzr")
		r.impl = &bzrBackend{tool: t, remote: opts.Remote}
	case domain.BackendFossil:
		r.impl = &fossilBackend{tool: t, remote: opts.Remote}
	default:
		return nil, fmt.Errorf("unsupported backend %q", kind)
	}
	return r, nil
}

// Root returns the repository root directory.
func (r *Repo) Root() string { return r.root }

// Backend returns the detected version control system.
func (r *Repo) Backend() domain.Backend { return r.kind }

// MetaDir returns the backend metadata directory, or "" when there is none.
func (r *Repo) MetaDir() string { return r.metaDir }

// CurrentBranch returns the name of the branch the working copy is on.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	name, err := r.impl.currentBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return name, nil
}

// DefaultBranch returns the configured or detected main line.
func (r *Repo) DefaultBranch(ctx context.Context) (string, error) {
	if r.defaultBranch != "" {
		return r.defaultBranch, nil
	}
	name, err := r.impl.defaultBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("get default branch: %w", err)
	}
	return name, nil
}

// BranchExists checks if a branch exists.
func (r *Repo) BranchExists(ctx context.Context, name string) (bool, error) {
	ok, err := r.impl.branchExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check branch %s: %w", name, err)
	}
	return ok, nil
}

// StartBranch creates name at the current revision and switches to it.
func (r *Repo) StartBranch(ctx context.Context, name string) error {
	exists, err := r.BranchExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrBranchExists, name)
	}
	if err := r.impl.startBranch(ctx, name); err != nil {
		return fmt.Errorf("start branch %s: %w", name, err)
	}
	return nil
}

// CheckoutBranch switches to name unless the working copy is already on it.
func (r *Repo) CheckoutBranch(ctx context.Context, name string) error {
	cur, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if cur == name {
		return nil
	}
	if err := r.impl.checkout(ctx, name); err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	return nil
}

// CommitFile commits exactly one file. path may be absolute or relative to the root.
func (r *Repo) CommitFile(ctx context.Context, path, message string) error {
	rel, err := r.relPath(path)
	if err != nil {
		return err
	}
	if err := r.impl.commitFile(ctx, rel, message); err != nil {
		return fmt.Errorf("commit %s: %w", rel, err)
	}
	return nil
}

// PushBranch pushes name to the default remote.
func (r *Repo) PushBranch(ctx context.Context, name string) error {
	if err := r.impl.push(ctx, name); err != nil {
		return fmt.Errorf("push %s: %w", name, err)
	}
	return nil
}

// DiscardBranch deletes or closes a branch created by this tool.
func (r *Repo) DiscardBranch(ctx context.Context, name string) error {
	if err := r.impl.discard(ctx, name); err != nil {
		return fmt.Errorf("discard branch %s: %w", name, err)
	}
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD.
// Backends without staging always report false.
func (r *Repo) HasStagedChanges(ctx context.Context) (bool, error) {
	ok, err := r.impl.hasStaged(ctx)
	if err != nil {
		return false, fmt.Errorf("check staged changes: %w", err)
	}
	return ok, nil
}

// HasUncommittedChanges reports whether tracked files differ from the last commit.
func (r *Repo) HasUncommittedChanges(ctx context.Context) (bool, error) {
	ok, err := r.impl.hasUncommitted(ctx)
	if err != nil {
		return false, fmt.Errorf("check uncommitted changes: %w", err)
	}
	return ok, nil
}

// RemoteURL returns the default remote location or "".
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	url, err := r.impl.remoteURL(ctx)
	if err != nil {
		return "", fmt.Errorf("get remote url: %w", err)
	}
	return strings.TrimSpace(url), nil
}

// AgentCommit finds the Start-Agent-Branch commit of branch.
func (r *Repo) AgentCommit(ctx context.Context, branch string) (*domain.AgentCommit, error) {
	return r.impl.agentCommit(ctx, branch)
}

// ReadFileAt returns the content of path at the tip of branch.
func (r *Repo) ReadFileAt(ctx context.Context, branch, path string) (string, error) {
	rel, err := r.relPath(path)
	if err != nil {
		return "", err
	}
	content, err := r.impl.readFile(ctx, branch, rel)
	if err != nil {
		return "", fmt.Errorf("read %s at %s: %w", rel, branch, err)
	}
	return content, nil
}

func (r *Repo) relPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// gitMetaDir resolves the .git directory, following the gitdir file of
// linked worktrees.
func gitMetaDir(root string) string {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil || info.IsDir() {
		return dotGit
	}
	data, err := os.ReadFile(dotGit) //nolint:gosec // path derived from detected root
	if err != nil {
		return dotGit
	}
	gitDir, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !ok {
		return dotGit
	}
	gitDir = strings.TrimSpace(gitDir)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}
	return gitDir
}
