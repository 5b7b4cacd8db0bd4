package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/runoshun/agent-task/internal/domain"
)

// gitEnv keeps git from blocking on credential prompts; stdin is closed.
var gitEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"GIT_ASKPASS=echo",
	"SSH_ASKPASS=echo",
}

const defaultGitRemote = "origin"

// gitBackend drives the git CLI for mutations and reads history through go-git.
type gitBackend struct {
	tool
	root   string
	remote string
}

func (g *gitBackend) remoteName() string {
	if g.remote != "" {
		return g.remote
	}
	return defaultGitRemote
}

// currentBranch returns the checked-out branch, or the commit id when HEAD is detached.
func (g *gitBackend) currentBranch(ctx context.Context) (string, error) {
	res, err := g.run(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", err
	}
	if res.Success() {
		return strings.TrimSpace(res.Stdout), nil
	}
	out, err := g.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *gitBackend) defaultBranch(ctx context.Context) (string, error) {
	remote := g.remoteName()
	res, err := g.run(ctx, "symbolic-ref", "--short", "-q", "refs/remotes/"+remote+"/HEAD")
	if err != nil {
		return "", err
	}
	if res.Success() {
		if name, ok := strings.CutPrefix(strings.TrimSpace(res.Stdout), remote+"/"); ok && name != "" {
			return name, nil
		}
	}

	for _, name := range []string{"main", "master"} {
		exists, err := g.branchExists(ctx, name)
		if err != nil {
			return "", err
		}
		if exists {
			return name, nil
		}
	}

	res, err = g.run(ctx, "config", "--get", "init.defaultBranch")
	if err != nil {
		return "", err
	}
	if name := strings.TrimSpace(res.Stdout); res.Success() && name != "" {
		return name, nil
	}
	return domain.BackendGit.ConventionalDefaultBranch(), nil
}

func (g *gitBackend) branchExists(ctx context.Context, name string) (bool, error) {
	args := []string{"show-ref", "--verify", "--quiet", "refs/heads/" + name}
	res, err := g.run(ctx, args...)
	if err != nil {
		return false, err
	}
	switch res.ExitCode {
	case 0:
		return true, nil
	case 1:
		// Exit code 1 means ref not found
		return false, nil
	default:
		return false, g.failure(args, res)
	}
}

func (g *gitBackend) startBranch(ctx context.Context, name string) error {
	return g.exec(ctx, "checkout", "-q", "-b", name)
}

func (g *gitBackend) checkout(ctx context.Context, name string) error {
	return g.exec(ctx, "checkout", "-q", name)
}

// commitFile stages rel and commits only that path. A pathspec commit
// leaves every other index entry as it was.
func (g *gitBackend) commitFile(ctx context.Context, rel, message string) error {
	if err := g.exec(ctx, "add", "--", rel); err != nil {
		return err
	}
	if err := g.exec(ctx, "commit", "-q", "-m", message, "--", rel); err != nil {
		// Unstage again so a failed commit does not leave the file in the index.
		_, _ = g.run(ctx, "reset", "-q", "--", rel)
		return err
	}
	return nil
}

func (g *gitBackend) push(ctx context.Context, name string) error {
	return g.exec(ctx, "push", "-u", g.remoteName(), name)
}

func (g *gitBackend) discard(ctx context.Context, name string) error {
	return g.exec(ctx, "branch", "-D", name)
}

func (g *gitBackend) hasStaged(ctx context.Context) (bool, error) {
	args := []string{"diff", "--cached", "--quiet"}
	res, err := g.run(ctx, args...)
	if err != nil {
		return false, err
	}
	switch res.ExitCode {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, g.failure(args, res)
	}
}

func (g *gitBackend) hasUncommitted(ctx context.Context) (bool, error) {
	out, err := g.output(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (g *gitBackend) remoteURL(ctx context.Context) (string, error) {
	res, err := g.run(ctx, "remote", "get-url", g.remoteName())
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", nil
	}
	return res.Stdout, nil
}

// agentCommit walks the history of branch with go-git and returns the
// newest commit tagged for it, along with the files that commit added.
func (g *gitBackend) agentCommit(_ context.Context, branch string) (*domain.AgentCommit, error) {
	repo, err := g.open()
	if err != nil {
		return nil, err
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
		}
		return nil, fmt.Errorf("resolve branch %s: %w", branch, err)
	}

	iter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer iter.Close()

	var found *object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if tc, ok := domain.ParseTaskCommit(c.Message); ok && tc.Branch == branch {
			found = c
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
	}

	files, err := addedFiles(found)
	if err != nil {
		return nil, err
	}
	return &domain.AgentCommit{
		ID:      found.Hash.String(),
		Message: found.Message,
		Files:   files,
	}, nil
}

// readFile reads rel from the tree of the branch tip through go-git.
func (g *gitBackend) readFile(_ context.Context, branch, rel string) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return "", fmt.Errorf("resolve branch %s: %w", branch, err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}
	f, err := commit.File(rel)
	if err != nil {
		return "", err
	}
	return f.Contents()
}

func (g *gitBackend) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(g.root, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}

// addedFiles lists paths inserted by c relative to its first parent.
func addedFiles(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", c.Hash, err)
	}
	parentTree := &object.Tree{}
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("read parent of %s: %w", c.Hash, err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("read tree %s: %w", parent.Hash, err)
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", c.Hash, err)
	}
	var files []string
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, fmt.Errorf("diff %s: %w", c.Hash, err)
		}
		if action == merkletrie.Insert {
			files = append(files, ch.To.Name)
		}
	}
	return files, nil
}
