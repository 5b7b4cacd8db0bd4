package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/agent-task/internal/app"
	"github.com/runoshun/agent-task/internal/usecase"
)

// newGetTaskCommand creates the get-task command.
func newGetTaskCommand(c *app.Container) *cobra.Command {
	var pathOnly bool

	cmd := &cobra.Command{
		Use:   "get-task [BRANCH]",
		Short: "Print the task file of an agent branch",
		Long: `Print the task file of the current agent branch, or of BRANCH.

A branch that is not checked out is read from its latest revision, and
--path prints it as BRANCH:PATH.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRepository(c); err != nil {
				return err
			}
			var in usecase.GetTaskInput
			if len(args) == 1 {
				in.Branch = args[0]
			}

			out, err := c.GetTaskUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if pathOnly {
				// A branch that is not checked out has no file in the working copy.
				if out.Path != "" {
					_, _ = fmt.Fprintln(w, out.Path)
				} else {
					_, _ = fmt.Fprintln(w, out.Ref())
				}
				return nil
			}
			_, _ = fmt.Fprint(w, out.Content)
			if !strings.HasSuffix(out.Content, "\n") {
				_, _ = fmt.Fprintln(w)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pathOnly, "path", false, "Print the task file path (BRANCH:PATH for other branches) instead of its content")

	return cmd
}
