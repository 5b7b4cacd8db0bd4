package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/runoshun/agent-task/internal/domain"
)

const createLogCategory = "create"

// CreateTaskInput contains the parameters for recording a task.
// Fields are ordered to minimize memory padding.
type CreateTaskInput struct {
	Prompt         *string           // Literal prompt (optional)
	Branch         string            // New branch to create (empty = append on current agent branch)
	Devshell       string            // Dev shell recorded in the start commit (requires Branch)
	PromptFile     string            // Prompt file path (optional)
	Push           domain.PushChoice // Explicit push decision; PushAsk defers to config, then the user
	NonInteractive bool              // Never open the editor or ask questions
}

// CreateTaskOutput contains the result of recording a task.
// Fields are ordered to minimize memory padding.
type CreateTaskOutput struct {
	Branch   string // Branch the task was recorded on
	TaskFile string // Absolute path of the task file
	TaskRel  string // Task file path relative to the repository root
	Original string // Branch that was checked out before and after the run
	Created  bool   // A new branch was created
	Pushed   bool   // The branch was pushed
	Aborted  bool   // The prompt was empty; nothing was committed
}

// CreateTask records a task on a new or existing agent branch and always
// returns the working copy to the branch it started on.
type CreateTask struct {
	vcs       domain.VCS
	tasks     domain.TaskStore
	prompts   *AcquirePrompt
	prompter  domain.Prompter
	devshells domain.DevshellCatalog
	config    *domain.Config
	logger    domain.Logger
}

// NewCreateTask creates a new CreateTask use case.
func NewCreateTask(
	vcs domain.VCS,
	tasks domain.TaskStore,
	prompts *AcquirePrompt,
	prompter domain.Prompter,
	devshells domain.DevshellCatalog,
	config *domain.Config,
	logger domain.Logger,
) *CreateTask {
	if config == nil {
		config = domain.NewDefaultConfig()
	}
	return &CreateTask{
		vcs:       vcs,
		tasks:     tasks,
		prompts:   prompts,
		prompter:  prompter,
		devshells: devshells,
		config:    config,
		logger:    logger,
	}
}

// Execute runs the task transaction. A blank prompt is reported through
// CreateTaskOutput.Aborted with a nil error.
func (uc *CreateTask) Execute(ctx context.Context, in CreateTaskInput) (out *CreateTaskOutput, err error) {
	branch := strings.TrimSpace(in.Branch)
	push := in.Push
	if push == domain.PushAsk {
		push = uc.config.PushChoice()
	}
	if err := validateCreateInput(in, branch, push); err != nil {
		return nil, err
	}

	original, err := uc.vcs.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	hadStaged, err := uc.vcs.HasStagedChanges(ctx)
	if err != nil {
		return nil, err
	}
	defaultBranch, err := uc.vcs.DefaultBranch(ctx)
	if err != nil {
		return nil, err
	}

	out = &CreateTaskOutput{Original: original}
	if branch != "" {
		if err := domain.ValidateBranchName(branch, defaultBranch); err != nil {
			return nil, err
		}
		if in.Devshell != "" {
			if err := validateDevshell(uc.devshells, in.Devshell); err != nil {
				return nil, err
			}
		}
		if err := uc.vcs.StartBranch(ctx, branch); err != nil {
			return nil, err
		}
		out.Branch = branch
		out.Created = true
		uc.logger.Info(branch, createLogCategory, fmt.Sprintf("created branch from %s", original))
	} else {
		if domain.IsMainline(original, defaultBranch) {
			return nil, fmt.Errorf("%w: %s (pass a branch name to start a new task)", domain.ErrMainlineBranch, original)
		}
		if _, err := uc.tasks.TaskFile(ctx, original); err != nil {
			return nil, err
		}
		out.Branch = original
	}

	armed := out.Created
	defer func() {
		if rbErr := uc.restore(ctx, original, out.Branch, armed, hadStaged); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
	}()

	prompt, err := uc.prompts.Execute(ctx, AcquirePromptInput{Text: in.Prompt, File: in.PromptFile})
	if err != nil {
		return out, err
	}
	if prompt.Aborted {
		uc.logger.Info(out.Branch, createLogCategory, "empty prompt, aborting")
		out.Aborted = true
		return out, nil
	}

	if out.Created {
		out.TaskFile, err = uc.tasks.RecordInitialTask(ctx, prompt.Content, branch, in.Devshell)
	} else {
		out.TaskFile, err = uc.tasks.AppendTask(ctx, out.Branch, prompt.Content)
	}
	if err != nil {
		return out, err
	}
	out.TaskRel = uc.relPath(out.TaskFile)

	if push == domain.PushAsk {
		ok, err := uc.prompter.Confirm(ctx, domain.PushQuestion, true)
		if err != nil {
			return out, err
		}
		push = domain.PushNo
		if ok {
			push = domain.PushYes
		}
	}
	if push == domain.PushYes {
		if err := uc.vcs.PushBranch(ctx, out.Branch); err != nil {
			return out, err
		}
		out.Pushed = true
		uc.logger.Info(out.Branch, createLogCategory, "pushed branch")
	}

	armed = false
	return out, nil
}

// relPath returns path relative to the repository root, slash-separated.
func (uc *CreateTask) relPath(path string) string {
	rel, err := filepath.Rel(uc.vcs.Root(), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// TaskRef renders the task file as branch:path, which stays meaningful
// after the working copy has moved back to another branch.
func (o *CreateTaskOutput) TaskRef() string {
	return o.Branch + ":" + o.TaskRel
}

func validateCreateInput(in CreateTaskInput, branch string, push domain.PushChoice) error {
	if in.Prompt != nil && in.PromptFile != "" {
		return domain.ErrMultiplePromptSources
	}
	if in.Devshell != "" && branch == "" {
		return domain.ErrDevshellWithoutBranch
	}
	if in.NonInteractive {
		if in.Prompt == nil && in.PromptFile == "" {
			return domain.ErrNonInteractiveNoPrompt
		}
		if push == domain.PushAsk {
			return domain.ErrNonInteractiveNoPush
		}
	}
	return nil
}

// restore checks out original and, while armed, discards the branch this
// run created. It runs on a context that ignores cancellation.
func (uc *CreateTask) restore(ctx context.Context, original, branch string, armed, hadStaged bool) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error

	if err := uc.vcs.CheckoutBranch(ctx, original); err != nil {
		errs = append(errs, fmt.Errorf("restore %s: %w", original, err))
		if armed {
			uc.logger.Error(branch, createLogCategory, fmt.Sprintf("could not restore %s, leaving branch %s in place", original, branch))
		}
		return errors.Join(errs...)
	}

	if armed {
		switch err := uc.vcs.DiscardBranch(ctx, branch); {
		case err == nil:
			uc.logger.Info(branch, createLogCategory, "discarded branch")
		case errors.Is(err, domain.ErrDiscardUnsupported):
			uc.logger.Warn(branch, createLogCategory, fmt.Sprintf("branch %s left in place: %v", branch, err))
		default:
			errs = append(errs, fmt.Errorf("discard %s: %w", branch, err))
		}
	}

	if hasStaged, err := uc.vcs.HasStagedChanges(ctx); err == nil && hasStaged != hadStaged {
		uc.logger.Warn(branch, createLogCategory, fmt.Sprintf("staged changes before=%t after=%t", hadStaged, hasStaged))
	}
	return errors.Join(errs...)
}

func validateDevshell(catalog domain.DevshellCatalog, name string) error {
	names, err := catalog.Names()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: %q (none declared)", domain.ErrUnknownDevshell, name)
	}
	return fmt.Errorf("%w: %q (available: %s)", domain.ErrUnknownDevshell, name, strings.Join(names, ", "))
}
