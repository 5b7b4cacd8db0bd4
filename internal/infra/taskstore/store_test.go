package taskstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *testutil.MockVCS, *testutil.MockLogger) {
	t.Helper()
	vcs := testutil.NewMockVCS(t.TempDir())
	logger := &testutil.MockLogger{}
	return New(vcs, &testutil.MockClock{NowTime: fixedNow}, logger), vcs, logger
}

func TestStore_RecordInitialTask(t *testing.T) {
	ctx := context.Background()
	store, vcs, _ := newTestStore(t)
	vcs.Current = "Fix_Login"
	vcs.Branches["Fix_Login"] = true
	vcs.RemoteAddr = "git@github.com:acme/app.git"

	path, err := store.RecordInitialTask(ctx, "Fix the login form\n", "Fix_Login", "ci")
	require.NoError(t, err)

	wantRel := ".agents/tasks/2025/06/15-0930-fix-login"
	assert.Equal(t, filepath.Join(vcs.RootDir, filepath.FromSlash(wantRel)), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Fix the login form\n", string(data))

	require.Len(t, vcs.Commits, 1)
	c := vcs.Commits[0]
	assert.Equal(t, wantRel, c.Path)
	assert.Equal(t, "Fix_Login", c.Branch)
	assert.Equal(t,
		"Start-Agent-Branch: Fix_Login\nTarget-Remote: https://github.com/acme/app.git\nStart-Agent-Devshell: ci",
		c.Message)
}

func TestStore_RecordInitialTask_NoRemote(t *testing.T) {
	store, vcs, logger := newTestStore(t)

	_, err := store.RecordInitialTask(context.Background(), "x", "feat", "")
	require.NoError(t, err)
	require.Len(t, vcs.Commits, 1)
	assert.Equal(t, "Start-Agent-Branch: feat", vcs.Commits[0].Message)
	assert.True(t, logger.Has("recorded task .agents/tasks/2025/06/15-0930-feat"))
}

func TestStore_RecordInitialTask_Collision(t *testing.T) {
	ctx := context.Background()
	store, vcs, _ := newTestStore(t)

	_, err := store.RecordInitialTask(ctx, "first", "feat", "")
	require.NoError(t, err)

	_, err = store.RecordInitialTask(ctx, "second", "FEAT", "")
	assert.ErrorIs(t, err, domain.ErrTaskFileExists)
	assert.Len(t, vcs.Commits, 1)
}

func TestStore_RecordInitialTask_EmptySlug(t *testing.T) {
	store, vcs, _ := newTestStore(t)

	_, err := store.RecordInitialTask(context.Background(), "x", "___", "")
	assert.ErrorIs(t, err, domain.ErrEmptySlug)
	assert.Empty(t, vcs.Commits)
}

func TestStore_RecordInitialTask_CommitFailureRemovesFile(t *testing.T) {
	store, vcs, _ := newTestStore(t)
	vcs.CommitErr = errors.New("commit rejected")

	_, err := store.RecordInitialTask(context.Background(), "x", "feat", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "commit rejected")

	_, statErr := os.Stat(filepath.Join(vcs.RootDir, ".agents"))
	assert.True(t, os.IsNotExist(statErr), "created directories should be removed")
}

func TestStore_RecordInitialTask_KeepsExistingDirectories(t *testing.T) {
	store, vcs, _ := newTestStore(t)
	existing := filepath.Join(vcs.RootDir, ".agents")
	require.NoError(t, os.MkdirAll(existing, 0o755))
	vcs.CommitErr = errors.New("commit rejected")

	_, err := store.RecordInitialTask(context.Background(), "x", "feat", "")
	require.Error(t, err)

	_, statErr := os.Stat(existing)
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(existing, "tasks"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_AppendTask(t *testing.T) {
	ctx := context.Background()
	store, vcs, _ := newTestStore(t)
	vcs.Current = "feat"
	vcs.Branches["feat"] = true

	path, err := store.RecordInitialTask(ctx, "first task", "feat", "")
	require.NoError(t, err)

	appended, err := store.AppendTask(ctx, "feat", "second task")
	require.NoError(t, err)
	assert.Equal(t, path, appended)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first task\n--- FOLLOW UP TASK ---\nsecond task", string(data))

	require.Len(t, vcs.Commits, 2)
	assert.Equal(t, domain.FollowUpCommitMessage, vcs.Commits[1].Message)
	assert.Equal(t, vcs.Commits[0].Path, vcs.Commits[1].Path)
}

func TestStore_AppendTask_NotAgentBranch(t *testing.T) {
	store, vcs, _ := newTestStore(t)

	_, err := store.AppendTask(context.Background(), "feature", "more")
	assert.ErrorIs(t, err, domain.ErrNotAgentBranch)
	assert.Empty(t, vcs.Commits)
}

func TestStore_AppendTask_CommitFailureRestoresContent(t *testing.T) {
	ctx := context.Background()
	store, vcs, _ := newTestStore(t)
	vcs.Current = "main-task"
	vcs.Branches["main-task"] = true

	path, err := store.RecordInitialTask(ctx, "original", "main-task", "")
	require.NoError(t, err)
	vcs.CommitErr = errors.New("disk full")

	_, err = store.AppendTask(ctx, "main-task", "more")
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestStore_TaskFile(t *testing.T) {
	ctx := context.Background()

	t.Run("ambiguous start commit", func(t *testing.T) {
		store, vcs, _ := newTestStore(t)
		vcs.Agents["feat"] = &domain.AgentCommit{
			ID:    "abc",
			Files: []string{".agents/tasks/2025/01/01-0000-a", ".agents/tasks/2025/01/01-0000-b"},
		}
		_, err := store.TaskFile(ctx, "feat")
		assert.ErrorIs(t, err, domain.ErrNotAgentBranch)
	})

	t.Run("ignores non-task files", func(t *testing.T) {
		store, vcs, _ := newTestStore(t)
		rel := ".agents/tasks/2025/01/01-0000-feat"
		abs := filepath.Join(vcs.RootDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte("x"), 0o644))
		vcs.Agents["feat"] = &domain.AgentCommit{ID: "abc", Files: []string{"README.md", rel}}

		got, err := store.TaskFile(ctx, "feat")
		require.NoError(t, err)
		assert.Equal(t, abs, got)
	})

	t.Run("missing file on disk", func(t *testing.T) {
		store, vcs, _ := newTestStore(t)
		vcs.Agents["feat"] = &domain.AgentCommit{ID: "abc", Files: []string{".agents/tasks/2025/01/01-0000-feat"}}
		_, err := store.TaskFile(ctx, "feat")
		assert.ErrorIs(t, err, domain.ErrNotAgentBranch)
	})
}

func TestStore_ReadTask(t *testing.T) {
	ctx := context.Background()
	store, vcs, _ := newTestStore(t)
	vcs.Current = "feat"
	vcs.Branches["feat"] = true

	path, err := store.RecordInitialTask(ctx, "first task", "feat", "")
	require.NoError(t, err)

	t.Run("checked out branch reads the working copy", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("edited locally"), 0o644))
		defer func() { require.NoError(t, os.WriteFile(path, []byte("first task"), 0o644)) }()

		task, err := store.ReadTask(ctx, "feat")
		require.NoError(t, err)
		assert.Equal(t, path, task.Path)
		assert.Equal(t, "edited locally", task.Content)
		assert.Equal(t, ".agents/tasks/2025/06/15-0930-feat", task.RelPath)
	})

	t.Run("other branch reads the tip revision", func(t *testing.T) {
		vcs.Current = "main"
		defer func() { vcs.Current = "feat" }()
		require.NoError(t, os.Remove(path))
		defer func() { require.NoError(t, os.WriteFile(path, []byte("first task"), 0o644)) }()

		task, err := store.ReadTask(ctx, "feat")
		require.NoError(t, err)
		assert.Empty(t, task.Path)
		assert.Equal(t, "first task", task.Content)
		assert.Equal(t, "feat:.agents/tasks/2025/06/15-0930-feat", task.Ref())
	})

	t.Run("not an agent branch", func(t *testing.T) {
		_, err := store.ReadTask(ctx, "main")
		assert.ErrorIs(t, err, domain.ErrNotAgentBranch)
	})
}
