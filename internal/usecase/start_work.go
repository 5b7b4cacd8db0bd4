package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

// StartWorkInput contains the parameters for the start-work entry point.
type StartWorkInput struct {
	Description string            // Task description (required)
	BranchName  string            // Requested branch name, sanitized (optional)
	Push        domain.PushChoice // Only PushYes pushes
}

// StartWorkOutput contains the result of start-work.
type StartWorkOutput struct {
	*CreateTaskOutput
	IgnoredBranchName string // BranchName that was ignored because the current branch is an agent branch
}

// StartWork records a task without ever prompting: on an agent branch the
// description is appended, otherwise a new branch is started.
type StartWork struct {
	vcs    domain.VCS
	tasks  domain.TaskStore
	create *CreateTask
}

// NewStartWork creates a new StartWork use case.
func NewStartWork(vcs domain.VCS, tasks domain.TaskStore, create *CreateTask) *StartWork {
	return &StartWork{vcs: vcs, tasks: tasks, create: create}
}

// Execute runs start-work.
func (uc *StartWork) Execute(ctx context.Context, in StartWorkInput) (*StartWorkOutput, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, domain.ErrEmptyDescription
	}

	push := domain.PushNo
	if in.Push == domain.PushYes {
		push = domain.PushYes
	}
	create := CreateTaskInput{
		Prompt:         &in.Description,
		Push:           push,
		NonInteractive: true,
	}
	out := &StartWorkOutput{}

	current, err := uc.vcs.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	_, err = uc.tasks.TaskFile(ctx, current)
	switch {
	case err == nil:
		out.IgnoredBranchName = in.BranchName
	case errors.Is(err, domain.ErrNotAgentBranch):
		name := domain.BranchNameFromDescription(in.Description)
		if strings.TrimSpace(in.BranchName) != "" {
			name = domain.SanitizeBranchName(in.BranchName)
		}
		if name == "" {
			return nil, domain.ErrEmptyBranchName
		}
		create.Branch = name
	default:
		return nil, err
	}

	res, err := uc.create.Execute(ctx, create)
	if err != nil {
		return nil, err
	}
	out.CreateTaskOutput = res
	return out, nil
}
