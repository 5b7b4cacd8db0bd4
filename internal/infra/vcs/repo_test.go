package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, kind domain.Backend, runner *testutil.FakeRunner, opts Options) *Repo {
	t.Helper()
	repo, err := New("/repo", kind, runner, opts)
	require.NoError(t, err)
	return repo
}

func TestNew_MetaDir(t *testing.T) {
	runner := testutil.NewFakeRunner()

	hg := newTestRepo(t, domain.BackendHg, runner, Options{})
	assert.Equal(t, filepath.Join("/repo", ".hg"), hg.MetaDir())
	assert.Equal(t, "/repo", hg.Root())
	assert.Equal(t, domain.BackendHg, hg.Backend())

	fossil := newTestRepo(t, domain.BackendFossil, runner, Options{})
	assert.Empty(t, fossil.MetaDir())

	_, err := New("/repo", domain.Backend("svn"), runner, Options{})
	assert.Error(t, err)
}

func TestRepo_StartBranch(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing branch", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("git show-ref --verify --quiet refs/heads/feat", "", 1)
		repo := newTestRepo(t, domain.BackendGit, runner, Options{})

		require.NoError(t, repo.StartBranch(ctx, "feat"))
		assert.True(t, runner.Called("git checkout -q -b feat"))
	})

	t.Run("fails when branch exists", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("git show-ref --verify --quiet refs/heads/feat", "", 0)
		repo := newTestRepo(t, domain.BackendGit, runner, Options{})

		err := repo.StartBranch(ctx, "feat")
		assert.ErrorIs(t, err, domain.ErrBranchExists)
		assert.False(t, runner.Called("git checkout -q -b feat"))
	})
}

func TestRepo_CheckoutBranch_Idempotent(t *testing.T) {
	ctx := context.Background()
	runner := testutil.NewFakeRunner().
		On("git symbolic-ref --short -q HEAD", "main\n", 0)
	repo := newTestRepo(t, domain.BackendGit, runner, Options{})

	require.NoError(t, repo.CheckoutBranch(ctx, "main"))
	assert.False(t, runner.Called("git checkout -q main"))

	require.NoError(t, repo.CheckoutBranch(ctx, "other"))
	assert.True(t, runner.Called("git checkout -q other"))
}

func TestRepo_CommitFile_Paths(t *testing.T) {
	ctx := context.Background()
	runner := testutil.NewFakeRunner()
	repo := newTestRepo(t, domain.BackendGit, runner, Options{})

	require.NoError(t, repo.CommitFile(ctx, "/repo/.agents/tasks/f", "msg"))
	assert.True(t, runner.Called("git add -- .agents/tasks/f"))
	assert.True(t, runner.Called("git commit -q -m msg -- .agents/tasks/f"))

	err := repo.CommitFile(ctx, "/elsewhere/f", "msg")
	assert.Error(t, err)
}

func TestRepo_DefaultBranch_Override(t *testing.T) {
	runner := testutil.NewFakeRunner()
	repo := newTestRepo(t, domain.BackendGit, runner, Options{DefaultBranch: "develop"})

	got, err := repo.DefaultBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "develop", got)
	assert.Empty(t, runner.Calls)
}

func TestRepo_StartFailure_IsTyped(t *testing.T) {
	runner := testutil.NewFakeRunner().
		On("git show-ref --verify --quiet refs/heads/feat", "", 1).
		Fail("git checkout -q -b feat", "fatal: cannot lock ref", 128)
	repo := newTestRepo(t, domain.BackendGit, runner, Options{})

	err := repo.StartBranch(context.Background(), "feat")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVCSCommandFailed)

	var cmdErr *domain.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 128, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Stderr, "cannot lock ref")
	assert.Contains(t, err.Error(), "cannot lock ref")
}

func TestRepo_RunnerStartFailure(t *testing.T) {
	runner := testutil.NewFakeRunner().
		Error("hg branch", errors.New("executable file not found"))
	repo := newTestRepo(t, domain.BackendHg, runner, Options{})

	_, err := repo.CurrentBranch(context.Background())
	assert.ErrorContains(t, err, "executable file not found")
}

func TestRepo_ReadFileAt(t *testing.T) {
	ctx := context.Background()
	rel := ".agents/tasks/2025/01/01-0000-feat"

	tests := []struct {
		kind    domain.Backend
		cmdline string
	}{
		{domain.BackendHg, "hg cat -r feat path:" + rel},
		{domain.BackendBzr, "bzr cat -r branch:co:feat " + rel},
		{domain.BackendFossil, "fossil cat " + rel + " -r feat"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			runner := testutil.NewFakeRunner().On(tt.cmdline, "Do it\n", 0)
			repo := newTestRepo(t, tt.kind, runner, Options{})

			got, err := repo.ReadFileAt(ctx, "feat", filepath.Join("/repo", filepath.FromSlash(rel)))
			require.NoError(t, err)
			assert.Equal(t, "Do it\n", got)
		})
	}

	t.Run("missing file is a command error", func(t *testing.T) {
		runner := testutil.NewFakeRunner().Fail("hg cat -r feat path:"+rel, "no such file", 1)
		repo := newTestRepo(t, domain.BackendHg, runner, Options{})

		_, err := repo.ReadFileAt(ctx, "feat", rel)
		assert.ErrorIs(t, err, domain.ErrVCSCommandFailed)
		assert.ErrorContains(t, err, "at feat")
	})
}

func TestRepo_ReadFileAt_Git(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	rel := ".agents/tasks/2025/01/01-0000-feat"

	gitRepo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := gitRepo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.Dir(filepath.FromSlash(rel))), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), []byte("Do it"), 0o644))
	_, err = wt.Add(rel)
	require.NoError(t, err)
	hash, err := wt.Commit("Start-Agent-Branch: feat", &git.CommitOptions{
		Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	require.NoError(t, gitRepo.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("feat"), hash)))

	// The working copy no longer has the file; the branch tip still does.
	require.NoError(t, os.RemoveAll(filepath.Join(dir, ".agents")))

	repo, err := New(dir, domain.BackendGit, testutil.NewFakeRunner(), Options{})
	require.NoError(t, err)

	got, err := repo.ReadFileAt(ctx, "feat", rel)
	require.NoError(t, err)
	assert.Equal(t, "Do it", got)

	_, err = repo.ReadFileAt(ctx, "missing", rel)
	assert.Error(t, err)
}
