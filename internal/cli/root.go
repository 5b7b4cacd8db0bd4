// Package cli provides the command-line interface for agent-task.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/agent-task/internal/app"
	"github.com/runoshun/agent-task/internal/domain"
)

// Command group IDs.
const (
	groupTask  = "task"
	groupSetup = "setup"
)

// NewRootCommand creates the root command for agent-task.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "agent-task",
		Short: "Record coding tasks for agents on dedicated branches",
		Long: `agent-task records a task description for a coding agent in
.agents/tasks/, committed on a dedicated agent branch.

The working copy is always returned to the branch it started on, and a
branch created by a failed or aborted run is discarded again.
git, fossil, bzr and hg repositories are supported.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. outside a repository)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Warning: "+w))
			}
			return nil
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupTask, Title: "Task Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	createCmd := newCreateCommand(c)
	createCmd.GroupID = groupTask

	startWorkCmd := newStartWorkCommand(c)
	startWorkCmd.GroupID = groupTask

	getTaskCmd := newGetTaskCommand(c)
	getTaskCmd.GroupID = groupTask

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		createCmd,
		startWorkCmd,
		getTaskCmd,
		configCmd,
	)

	return root
}

// requireRepository reports the repository detection error for commands
// that were invoked outside a repository.
func requireRepository(c *app.Container) error {
	if c == nil || c.VCS == nil {
		return domain.ErrNotRepository
	}
	return nil
}

// requireConfig fails when no configuration sources are wired.
func requireConfig(c *app.Container) error {
	if c == nil || c.ConfigManager == nil || c.ConfigLoader == nil {
		return domain.ErrNotRepository
	}
	return nil
}

// IsUsageError reports whether err is a command-line usage error.
func IsUsageError(err error) bool {
	return errors.Is(err, domain.ErrUsage)
}
