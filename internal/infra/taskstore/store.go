// Package taskstore manages task description files under .agents/tasks.
package taskstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/runoshun/agent-task/internal/domain"
)

const logCategory = "taskstore"

// Store implements domain.TaskStore on top of a repository handle.
type Store struct {
	vcs    domain.VCS
	clock  domain.Clock
	logger domain.Logger
}

// Ensure Store implements domain.TaskStore interface.
var _ domain.TaskStore = (*Store)(nil)

// New creates a Store. logger may be nil.
func New(vcs domain.VCS, clock domain.Clock, logger domain.Logger) *Store {
	return &Store{vcs: vcs, clock: clock, logger: logger}
}

// RecordInitialTask writes content to a new date-bucketed task file and
// commits it with the Start-Agent-Branch message. The file is removed
// again when the commit fails.
func (s *Store) RecordInitialTask(ctx context.Context, content, branch, devshell string) (string, error) {
	slug, err := domain.Slugify(branch)
	if err != nil {
		return "", err
	}
	rel := domain.TaskFileRelPath(s.clock.Now(), slug)
	path := filepath.Join(s.vcs.Root(), rel)

	created, err := mkdirAll(filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("create task directory: %w", err)
	}
	if err := writeNew(path, content); err != nil {
		removeDirs(created)
		return "", err
	}

	commit := domain.TaskCommit{Branch: branch, Devshell: devshell}
	if remote, err := s.vcs.RemoteURL(ctx); err != nil {
		s.warn(branch, fmt.Sprintf("remote url unavailable: %v", err))
	} else if remote != "" {
		commit.TargetRemote = domain.HTTPSRemoteURL(remote)
	}

	if err := s.vcs.CommitFile(ctx, path, commit.Message()); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.warn(branch, fmt.Sprintf("remove %s: %v", rel, rmErr))
		}
		removeDirs(created)
		return "", fmt.Errorf("commit task file: %w", err)
	}
	s.info(branch, "recorded task "+filepath.ToSlash(rel))
	return path, nil
}

// AppendTask adds a follow-up section to the task file of branch and
// commits it. The previous content is restored when the commit fails.
func (s *Store) AppendTask(ctx context.Context, branch, content string) (string, error) {
	path, err := s.TaskFile(ctx, branch)
	if err != nil {
		return "", err
	}
	old, err := os.ReadFile(path) //nolint:gosec // path comes from repository history
	if err != nil {
		return "", fmt.Errorf("read task file: %w", err)
	}
	updated := string(old) + domain.FollowUpDelimiter + content
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil { //nolint:gosec // task files are committed content
		return "", fmt.Errorf("write task file: %w", err)
	}

	if err := s.vcs.CommitFile(ctx, path, domain.FollowUpCommitMessage); err != nil {
		if wErr := os.WriteFile(path, old, 0o644); wErr != nil { //nolint:gosec // restoring committed content
			s.warn(branch, fmt.Sprintf("restore task file: %v", wErr))
		}
		return "", fmt.Errorf("commit follow-up task: %w", err)
	}
	s.info(branch, "appended follow-up task")
	return path, nil
}

// TaskFile locates the task file added by the start commit of branch.
// The file must exist in the working copy.
func (s *Store) TaskFile(ctx context.Context, branch string) (string, error) {
	rel, err := s.taskRelPath(ctx, branch)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.vcs.Root(), filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s: task file %s: %w", domain.ErrNotAgentBranch, branch, rel, err)
	}
	return path, nil
}

// ReadTask returns the task file of branch. The working copy is read when
// branch is checked out, and the branch tip otherwise.
func (s *Store) ReadTask(ctx context.Context, branch string) (*domain.TaskContent, error) {
	rel, err := s.taskRelPath(ctx, branch)
	if err != nil {
		return nil, err
	}
	current, err := s.vcs.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	task := &domain.TaskContent{Branch: branch, RelPath: rel}

	if current != branch {
		content, err := s.vcs.ReadFileAt(ctx, branch, rel)
		if err != nil {
			return nil, fmt.Errorf("read task file: %w", err)
		}
		task.Content = content
		return task, nil
	}

	path := filepath.Join(s.vcs.Root(), filepath.FromSlash(rel))
	data, err := os.ReadFile(path) //nolint:gosec // path comes from repository history
	if err != nil {
		return nil, fmt.Errorf("%w: %s: task file %s: %w", domain.ErrNotAgentBranch, branch, rel, err)
	}
	task.Path = path
	task.Content = string(data)
	return task, nil
}

// taskRelPath returns the single task file added by the start commit of branch.
func (s *Store) taskRelPath(ctx context.Context, branch string) (string, error) {
	c, err := s.vcs.AgentCommit(ctx, branch)
	if err != nil {
		if errors.Is(err, domain.ErrAgentCommitNotFound) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotAgentBranch, branch)
		}
		return "", fmt.Errorf("find start commit: %w", err)
	}

	var files []string
	for _, f := range c.Files {
		if domain.IsTaskFilePath(f) {
			files = append(files, filepath.ToSlash(f))
		}
	}
	if len(files) != 1 {
		return "", fmt.Errorf("%w: %s: start commit %s adds %d task files, expected 1",
			domain.ErrNotAgentBranch, branch, c.ID, len(files))
	}
	return files[0], nil
}

func (s *Store) info(branch, msg string) {
	if s.logger != nil {
		s.logger.Info(branch, logCategory, msg)
	}
}

func (s *Store) warn(branch, msg string) {
	if s.logger != nil {
		s.logger.Warn(branch, logCategory, msg)
	}
}

// writeNew creates path exclusively and writes content to it.
func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // task files are committed content
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", domain.ErrTaskFileExists, path)
		}
		return fmt.Errorf("create task file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write task file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

// mkdirAll creates dir and returns the directories it had to create,
// deepest first.
func mkdirAll(dir string) ([]string, error) {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if filepath.Dir(d) == d {
			break
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // repository directories
		return nil, err
	}
	return missing, nil
}

// removeDirs removes directories created by mkdirAll if they are empty.
func removeDirs(dirs []string) {
	for _, d := range dirs {
		if err := os.Remove(d); err != nil {
			return
		}
	}
}
