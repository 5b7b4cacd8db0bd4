package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

// fossilBackend drives fossil checkouts. Fossil has no staging area and
// branches are permanent, so discarding is unsupported.
type fossilBackend struct {
	tool
	remote string
}

// currentBranch reads the starred entry of `fossil branch list`.
func (f *fossilBackend) currentBranch(ctx context.Context) (string, error) {
	out, err := f.output(ctx, "branch", "list")
	if err != nil {
		return "", err
	}
	for _, l := range lines(out) {
		if name, ok := strings.CutPrefix(l, "*"); ok {
			return strings.TrimSpace(name), nil
		}
	}
	return "", fmt.Errorf("fossil branch list: no current branch marked")
}

func (f *fossilBackend) defaultBranch(context.Context) (string, error) {
	return domain.BackendFossil.ConventionalDefaultBranch(), nil
}

func (f *fossilBackend) branchExists(ctx context.Context, name string) (bool, error) {
	out, err := f.output(ctx, "branch", "list", "--all")
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

func (f *fossilBackend) startBranch(ctx context.Context, name string) error {
	current, err := f.currentBranch(ctx)
	if err != nil {
		return err
	}
	if err := f.exec(ctx, "branch", "new", name, current); err != nil {
		return err
	}
	return f.exec(ctx, "update", name)
}

func (f *fossilBackend) checkout(ctx context.Context, name string) error {
	return f.exec(ctx, "update", name)
}

func (f *fossilBackend) commitFile(ctx context.Context, rel, message string) error {
	tracked, err := f.tracked(ctx, rel)
	if err != nil {
		return err
	}
	if !tracked {
		if err := f.exec(ctx, "add", rel); err != nil {
			return err
		}
	}
	if err := f.exec(ctx, "commit", "--no-warnings", "-m", message, rel); err != nil {
		if !tracked {
			_, _ = f.run(ctx, "forget", rel)
		}
		return err
	}
	return nil
}

func (f *fossilBackend) tracked(ctx context.Context, rel string) (bool, error) {
	res, err := f.run(ctx, "ls", rel)
	if err != nil {
		return false, err
	}
	return res.Success() && strings.TrimSpace(res.Stdout) != "", nil
}

func (f *fossilBackend) push(ctx context.Context, _ string) error {
	args := []string{"push"}
	if f.remote != "" {
		args = append(args, f.remote)
	}
	return f.exec(ctx, args...)
}

func (f *fossilBackend) discard(context.Context, string) error {
	return domain.ErrDiscardUnsupported
}

func (f *fossilBackend) hasStaged(context.Context) (bool, error) {
	return false, nil
}

func (f *fossilBackend) hasUncommitted(ctx context.Context) (bool, error) {
	out, err := f.output(ctx, "changes")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (f *fossilBackend) remoteURL(ctx context.Context) (string, error) {
	if f.remote != "" {
		return f.remote, nil
	}
	res, err := f.run(ctx, "remote")
	if err != nil {
		return "", err
	}
	url := strings.TrimSpace(res.Stdout)
	if !res.Success() || url == "off" {
		return "", nil
	}
	return url, nil
}

func (f *fossilBackend) agentCommit(ctx context.Context, branch string) (*domain.AgentCommit, error) {
	query := fmt.Sprintf(`SELECT blob.uuid FROM event
JOIN blob ON blob.rid = event.objid
JOIN tagxref ON tagxref.rid = event.objid
JOIN tag ON tag.tagid = tagxref.tagid
WHERE event.type = 'ci' AND tagxref.tagtype > 0 AND tag.tagname = %s
AND (event.comment = %s OR event.comment LIKE %s)
ORDER BY event.mtime DESC LIMIT 1;`,
		sqlQuote("sym-"+branch),
		sqlQuote(domain.StartBranchLine(branch)),
		sqlQuote(domain.StartBranchLine(branch)+"\n%"))
	uuid, err := f.output(ctx, "sql", query)
	if err != nil {
		return nil, err
	}
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
	}

	comment, err := f.output(ctx, "sql", fmt.Sprintf(
		`SELECT event.comment FROM event JOIN blob ON blob.rid = event.objid WHERE blob.uuid = %s;`,
		sqlQuote(uuid)))
	if err != nil {
		return nil, err
	}
	files, err := f.output(ctx, "sql", fmt.Sprintf(`SELECT filename.name FROM mlink
JOIN filename ON filename.fnid = mlink.fnid
JOIN blob ON blob.rid = mlink.mid
WHERE blob.uuid = %s AND mlink.pid = 0;`, sqlQuote(uuid)))
	if err != nil {
		return nil, err
	}
	return &domain.AgentCommit{
		ID:      uuid,
		Message: strings.TrimSpace(comment),
		Files:   lines(files),
	}, nil
}

func (f *fossilBackend) readFile(ctx context.Context, branch, rel string) (string, error) {
	return f.output(ctx, "cat", rel, "-r", branch)
}

// sqlQuote renders s as an SQL string literal.
func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
