package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runoshun/agent-task/internal/app"
	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/usecase"
)

// newCreateCommand creates the create command.
func newCreateCommand(c *app.Container) *cobra.Command {
	var opts struct {
		prompt         string
		promptFile     string
		devshell       string
		push           string
		remote         string
		nonInteractive bool
	}

	cmd := &cobra.Command{
		Use:     "create [BRANCH]",
		Aliases: []string{"task"},
		Short:   "Record a task, on a new branch or the current agent branch",
		Long: `Record a task for an agent.

With BRANCH, a new branch is created from the current revision and the
task is committed to a new file under .agents/tasks/. Without BRANCH, the
task is appended to the task file of the current agent branch.

The prompt is read from --prompt, --prompt-file or, by default, written in
your editor ($AGENT_TASK_EDITOR, $EDITOR, or the first of nano, pico, micro,
vim, helix, hx, vi). An empty prompt aborts without committing anything.

The working copy always ends on the branch it started on.`,
		Example: `  # Write the prompt in your editor
  agent-task create fix-login

  # Non-interactive, pushing the new branch
  agent-task create fix-login --prompt "Fix the login form" --push-to-remote=yes --non-interactive

  # Add a follow-up task on the current agent branch
  agent-task task --prompt-file followup.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRepository(c); err != nil {
				return err
			}

			push, err := domain.ParsePushChoice(opts.push)
			if err != nil {
				return err
			}

			in := usecase.CreateTaskInput{
				PromptFile:     opts.promptFile,
				Devshell:       opts.devshell,
				Push:           push,
				NonInteractive: opts.nonInteractive,
			}
			if len(args) == 1 {
				in.Branch = args[0]
			}
			if cmd.Flags().Changed("prompt") {
				prompt := opts.prompt
				in.Prompt = &prompt
			}
			if opts.remote != "" {
				if err := c.SetRemote(opts.remote); err != nil {
					return err
				}
			}

			out, err := c.CreateTaskUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			printCreateResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.prompt, "prompt", "", "Task prompt text")
	cmd.Flags().StringVar(&opts.promptFile, "prompt-file", "", "Read the task prompt from a file")
	cmd.Flags().StringVarP(&opts.devshell, "devshell", "s", "", "Dev shell to record for the agent (requires BRANCH)")
	cmd.Flags().StringVar(&opts.push, "push-to-remote", "", "Push without asking: 1/true/yes/y or 0/false/no/n")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "Remote to push to (overrides [vcs] remote)")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Never open an editor or ask questions")
	cmd.MarkFlagsMutuallyExclusive("prompt", "prompt-file")

	return cmd
}

func printCreateResult(w, errW io.Writer, out *usecase.CreateTaskOutput) {
	if out.Aborted {
		_, _ = fmt.Fprintln(errW, warnStyle.Render("Empty prompt, nothing was recorded."))
		return
	}
	if out.Created {
		_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render("Created branch"), out.Branch)
	} else {
		_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render("Added follow-up task on"), out.Branch)
	}
	_, _ = fmt.Fprintf(w, "  task file: %s\n", pathStyle.Render(out.TaskRef()))
	if out.Pushed {
		_, _ = fmt.Fprintf(w, "  pushed %s\n", out.Branch)
	}
	if out.Original != out.Branch {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("  back on "+out.Original))
	}
}
