package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/agent-task/internal/app"
	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/usecase"
)

// newStartWorkCommand creates the start-work command.
func newStartWorkCommand(c *app.Container) *cobra.Command {
	var opts struct {
		description string
		branchName  string
		push        string
	}

	cmd := &cobra.Command{
		Use:   "start-work",
		Short: "Record a task without any prompts (for agents and scripts)",
		Long: `Record a task without opening an editor or asking questions.

On an agent branch, the description is appended to its task file and
--branch-name is ignored. Otherwise a new branch is created, named after
--branch-name or the first line of the description.

The branch is pushed only with --push-to-remote=true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireRepository(c); err != nil {
				return err
			}
			push, err := domain.ParsePushChoice(opts.push)
			if err != nil {
				return err
			}

			out, err := c.StartWorkUseCase().Execute(cmd.Context(), usecase.StartWorkInput{
				Description: opts.description,
				BranchName:  opts.branchName,
				Push:        push,
			})
			if err != nil {
				return err
			}

			if out.IgnoredBranchName != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s\n",
					warnStyle.Render(fmt.Sprintf("Already on agent branch %s, ignoring --branch-name %s", out.Branch, out.IgnoredBranchName)))
			}
			printCreateResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), out.CreateTaskOutput)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.description, "task-description", "", "Task description (required)")
	cmd.Flags().StringVar(&opts.branchName, "branch-name", "", "Name of the branch to create")
	cmd.Flags().StringVar(&opts.push, "push-to-remote", "", "Push the branch: 1/true/yes/y or 0/false/no/n")
	_ = cmd.MarkFlagRequired("task-description")

	return cmd
}
