package vcs

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

// bzrBackend uses Bazaar (or Breezy) colocated branches.
type bzrBackend struct {
	tool
	remote string
}

func (b *bzrBackend) currentBranch(ctx context.Context) (string, error) {
	out, err := b.output(ctx, "nick")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (b *bzrBackend) defaultBranch(context.Context) (string, error) {
	return domain.BackendBzr.ConventionalDefaultBranch(), nil
}

func (b *bzrBackend) branchExists(ctx context.Context, name string) (bool, error) {
	out, err := b.output(ctx, "branches")
	if err != nil {
		return false, err
	}
	for _, l := range lines(out) {
		if strings.TrimSpace(strings.TrimPrefix(l, "*")) == name {
			return true, nil
		}
	}
	return false, nil
}

func (b *bzrBackend) startBranch(ctx context.Context, name string) error {
	return b.exec(ctx, "switch", "-b", name)
}

func (b *bzrBackend) checkout(ctx context.Context, name string) error {
	return b.exec(ctx, "switch", name)
}

func (b *bzrBackend) commitFile(ctx context.Context, rel, message string) error {
	tracked, err := b.tracked(ctx, rel)
	if err != nil {
		return err
	}
	if !tracked {
		if err := b.exec(ctx, "add", "--", rel); err != nil {
			return err
		}
	}
	if err := b.exec(ctx, "commit", "-m", message, "--", rel); err != nil {
		if !tracked {
			_, _ = b.run(ctx, "remove", "--keep", "--", rel)
		}
		return err
	}
	return nil
}

// tracked reports whether rel is versioned. Unknown files show up with a
// leading '?' in short status.
func (b *bzrBackend) tracked(ctx context.Context, rel string) (bool, error) {
	out, err := b.output(ctx, "status", "--short", "--", rel)
	if err != nil {
		return false, err
	}
	return !strings.HasPrefix(strings.TrimSpace(out), "?"), nil
}

func (b *bzrBackend) push(ctx context.Context, _ string) error {
	args := []string{"push"}
	if b.remote != "" {
		args = append(args, b.remote)
	}
	return b.exec(ctx, args...)
}

func (b *bzrBackend) discard(ctx context.Context, name string) error {
	return b.exec(ctx, "rmbranch", name)
}

func (b *bzrBackend) hasStaged(context.Context) (bool, error) {
	return false, nil
}

func (b *bzrBackend) hasUncommitted(ctx context.Context) (bool, error) {
	out, err := b.output(ctx, "status", "--short", "--versioned")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (b *bzrBackend) remoteURL(ctx context.Context) (string, error) {
	if b.remote != "" {
		return b.remote, nil
	}
	res, err := b.run(ctx, "config", "parent_location")
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", nil
	}
	return res.Stdout, nil
}

func (b *bzrBackend) agentCommit(ctx context.Context, branch string) (*domain.AgentCommit, error) {
	args := []string{"log", "-v", "-l", "1",
		"--match-message", "(?m)^" + regexp.QuoteMeta(domain.StartBranchLine(branch)) + `\s*$`,
	}
	current, err := b.currentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if current != branch {
		args = append(args, "co:"+branch)
	}
	res, err := b.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("%w: branch %s: %w", domain.ErrAgentCommitNotFound, branch, b.failure(args, res))
	}

	c := parseBzrLog(res.Stdout)
	if c == nil {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
	}
	if tc, ok := domain.ParseTaskCommit(c.Message); !ok || tc.Branch != branch {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
	}
	return c, nil
}

func (b *bzrBackend) readFile(ctx context.Context, branch, rel string) (string, error) {
	return b.output(ctx, "cat", "-r", "branch:co:"+branch, rel)
}

// parseBzrLog reads the first entry of `bzr log -v` output.
func parseBzrLog(out string) *domain.AgentCommit {
	var (
		c       domain.AgentCommit
		section string
		msg     []string
		seen    bool
	)
	for _, raw := range strings.Split(out, "\n") {
		if strings.HasPrefix(raw, "----") {
			if seen {
				break
			}
			seen = true
			continue
		}
		if !strings.HasPrefix(raw, " ") {
			key, value, _ := strings.Cut(raw, ":")
			section = key
			if key == "revno" {
				c.ID = strings.TrimSpace(value)
			}
			continue
		}
		item := strings.TrimPrefix(raw, "  ")
		switch section {
		case "message":
			msg = append(msg, item)
		case "added":
			if item = strings.TrimSpace(item); item != "" && !strings.HasSuffix(item, "/") {
				c.Files = append(c.Files, item)
			}
		}
	}
	if c.ID == "" {
		return nil
	}
	c.Message = strings.TrimSpace(strings.Join(msg, "\n"))
	return &c
}
