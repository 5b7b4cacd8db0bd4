package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

// hgEnv disables user aliases and localization so output stays parseable.
var hgEnv = []string{"HGPLAIN=1"}

// hgBackend maps agent branches onto Mercurial named branches. Named
// branches cannot be deleted, so discarding one closes it.
type hgBackend struct {
	tool
	remote string
}

func (h *hgBackend) currentBranch(ctx context.Context) (string, error) {
	out, err := h.output(ctx, "branch")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (h *hgBackend) defaultBranch(context.Context) (string, error) {
	return domain.BackendHg.ConventionalDefaultBranch(), nil
}

// branchExists reports whether name has at least one commit, closed or not.
func (h *hgBackend) branchExists(ctx context.Context, name string) (bool, error) {
	out, err := h.output(ctx, "branches", "--closed", "-T", "{branch}\n")
	if err != nil {
		return false, err
	}
	for _, b := range lines(out) {
		if b == name {
			return true, nil
		}
	}
	return false, nil
}

// startBranch marks the working directory for a new named branch. The
// branch comes into existence with the next commit.
func (h *hgBackend) startBranch(ctx context.Context, name string) error {
	return h.exec(ctx, "branch", name)
}

func (h *hgBackend) checkout(ctx context.Context, name string) error {
	return h.exec(ctx, "update", name)
}

func (h *hgBackend) commitFile(ctx context.Context, rel, message string) error {
	tracked, err := h.tracked(ctx, rel)
	if err != nil {
		return err
	}
	if !tracked {
		if err := h.exec(ctx, "add", "--", rel); err != nil {
			return err
		}
	}
	if err := h.exec(ctx, "commit", "-m", message, "--", rel); err != nil {
		if !tracked {
			_, _ = h.run(ctx, "forget", "--", rel)
		}
		return err
	}
	return nil
}

func (h *hgBackend) tracked(ctx context.Context, rel string) (bool, error) {
	res, err := h.run(ctx, "files", "--", rel)
	if err != nil {
		return false, err
	}
	return res.Success() && strings.TrimSpace(res.Stdout) != "", nil
}

func (h *hgBackend) push(ctx context.Context, name string) error {
	args := []string{"push", "--new-branch", "--rev", name}
	if h.remote != "" {
		args = append(args, h.remote)
	}
	res, err := h.run(ctx, args...)
	if err != nil {
		return err
	}
	// Exit code 1 means there was nothing to push
	if res.ExitCode > 1 {
		return h.failure(args, res)
	}
	return nil
}

// discard closes name when it has commits. A branch that was only marked
// in the working directory is reset to the parent's branch instead.
func (h *hgBackend) discard(ctx context.Context, name string) error {
	exists, err := h.branchExists(ctx, name)
	if err != nil {
		return err
	}
	current, err := h.currentBranch(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if current == name {
			return h.exec(ctx, "branch", "--clean")
		}
		return nil
	}

	if err := h.exec(ctx, "update", name); err != nil {
		return err
	}
	closeErr := h.exec(ctx, "commit", "--close-branch",
		"-X", "glob:**",
		"-m", fmt.Sprintf("Discard agent branch %s", name))
	if current != name {
		if err := h.exec(ctx, "update", current); err != nil {
			if closeErr != nil {
				return fmt.Errorf("%w (return to %s: %v)", closeErr, current, err)
			}
			return err
		}
	}
	return closeErr
}

func (h *hgBackend) hasStaged(context.Context) (bool, error) {
	return false, nil
}

func (h *hgBackend) hasUncommitted(ctx context.Context) (bool, error) {
	out, err := h.output(ctx, "status", "-mard")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (h *hgBackend) remoteURL(ctx context.Context) (string, error) {
	path := "default"
	if h.remote != "" {
		path = h.remote
	}
	res, err := h.run(ctx, "paths", path)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", nil
	}
	return res.Stdout, nil
}

func (h *hgBackend) agentCommit(ctx context.Context, branch string) (*domain.AgentCommit, error) {
	exists, err := h.branchExists(ctx, branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
	}

	revset := fmt.Sprintf("last(branch(%s) and desc(%s))",
		hgQuote(branch), hgQuote(domain.StartBranchLine(branch)))
	node, err := h.output(ctx, "log", "-r", revset, "-T", "{node}")
	if err != nil {
		return nil, err
	}
	node = strings.TrimSpace(node)
	if node == "" {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
	}

	desc, err := h.output(ctx, "log", "-r", node, "-T", "{desc}")
	if err != nil {
		return nil, err
	}
	if tc, ok := domain.ParseTaskCommit(desc); !ok || tc.Branch != branch {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
	}
	added, err := h.output(ctx, "log", "-r", node, "-T", "{file_adds % '{file}\\n'}")
	if err != nil {
		return nil, err
	}
	return &domain.AgentCommit{
		ID:      node,
		Message: desc,
		Files:   lines(added),
	}, nil
}

func (h *hgBackend) readFile(ctx context.Context, branch, rel string) (string, error) {
	return h.output(ctx, "cat", "-r", branch, "path:"+rel)
}

// hgQuote renders s as a revset string literal.
func hgQuote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
