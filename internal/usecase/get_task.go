package usecase

import (
	"context"

	"github.com/runoshun/agent-task/internal/domain"
)

// GetTaskInput contains the parameters for reading a task file.
type GetTaskInput struct {
	Branch string // Agent branch (empty = current branch)
}

// GetTaskOutput contains the task file of an agent branch.
type GetTaskOutput struct {
	*domain.TaskContent
}

// GetTask reads the task file of an agent branch.
type GetTask struct {
	vcs   domain.VCS
	tasks domain.TaskStore
}

// NewGetTask creates a new GetTask use case.
func NewGetTask(vcs domain.VCS, tasks domain.TaskStore) *GetTask {
	return &GetTask{vcs: vcs, tasks: tasks}
}

// Execute returns the task file of the requested branch. Branches that are
// not checked out are read from their tip revision.
func (uc *GetTask) Execute(ctx context.Context, in GetTaskInput) (*GetTaskOutput, error) {
	branch := in.Branch
	if branch == "" {
		current, err := uc.vcs.CurrentBranch(ctx)
		if err != nil {
			return nil, err
		}
		branch = current
	}

	task, err := uc.tasks.ReadTask(ctx, branch)
	if err != nil {
		return nil, err
	}
	return &GetTaskOutput{TaskContent: task}, nil
}
