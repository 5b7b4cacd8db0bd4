package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/infra/taskstore"
	"github.com/runoshun/agent-task/internal/testutil"
	"github.com/runoshun/agent-task/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTask_Execute(t *testing.T) {
	ctx := context.Background()
	vcs := testutil.NewMockVCS(t.TempDir())
	store := taskstore.New(vcs, domain.RealClock{}, &testutil.MockLogger{})
	vcs.Branches["feat"] = true
	vcs.Current = "feat"

	path, err := store.RecordInitialTask(ctx, "Write docs", "feat", "")
	require.NoError(t, err)

	uc := usecase.NewGetTask(vcs, store)

	out, err := uc.Execute(ctx, usecase.GetTaskInput{})
	require.NoError(t, err)
	assert.Equal(t, "feat", out.Branch)
	assert.Equal(t, path, out.Path)
	assert.Equal(t, "Write docs", out.Content)
	assert.True(t, filepath.IsAbs(out.Path))

	vcs.Current = "main"
	_, err = uc.Execute(ctx, usecase.GetTaskInput{})
	assert.ErrorIs(t, err, domain.ErrNotAgentBranch)
}

func TestGetTask_Execute_BranchNotCheckedOut(t *testing.T) {
	ctx := context.Background()
	vcs := testutil.NewMockVCS(t.TempDir())
	store := taskstore.New(vcs, domain.RealClock{}, &testutil.MockLogger{})
	vcs.Branches["feat"] = true
	vcs.Current = "feat"

	path, err := store.RecordInitialTask(ctx, "Write docs", "feat", "")
	require.NoError(t, err)

	// Back on main the task file is gone from the working copy.
	vcs.Current = "main"
	require.NoError(t, os.Remove(path))

	out, err := usecase.NewGetTask(vcs, store).Execute(ctx, usecase.GetTaskInput{Branch: "feat"})
	require.NoError(t, err)
	assert.Equal(t, "Write docs", out.Content)
	assert.Empty(t, out.Path)
	assert.Equal(t, "feat:"+out.RelPath, out.Ref())
	assert.True(t, domain.IsTaskFilePath(out.RelPath))
}

func TestGetTask_Execute_BranchContentWinsOverWorkingCopy(t *testing.T) {
	ctx := context.Background()
	vcs := testutil.NewMockVCS(t.TempDir())
	store := taskstore.New(vcs, domain.RealClock{}, &testutil.MockLogger{})
	vcs.Branches["feat"] = true
	vcs.Current = "feat"

	path, err := store.RecordInitialTask(ctx, "Committed", "feat", "")
	require.NoError(t, err)
	vcs.Current = "main"
	require.NoError(t, os.WriteFile(path, []byte("Stale copy"), 0o644))

	out, err := usecase.NewGetTask(vcs, store).Execute(ctx, usecase.GetTaskInput{Branch: "feat"})
	require.NoError(t, err)
	assert.Equal(t, "Committed", out.Content)
}

func TestGetTask_Execute_UnknownBranch(t *testing.T) {
	vcs := testutil.NewMockVCS(t.TempDir())
	store := taskstore.New(vcs, domain.RealClock{}, &testutil.MockLogger{})

	_, err := usecase.NewGetTask(vcs, store).Execute(context.Background(), usecase.GetTaskInput{Branch: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotAgentBranch)
	assert.ErrorContains(t, err, "nope")
}
