package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/runoshun/agent-task/internal/app"
	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/infra/config"
	"github.com/runoshun/agent-task/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage agent-task configuration files and settings.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigInitCommand(c))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display effective configuration after merging all sources.

Shows which config files were loaded and the final merged configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireConfig(c); err != nil {
				return err
			}
			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, "[Loaded from]")
			printConfigSource(w, out.GlobalConfig)
			printConfigSource(w, out.RepoConfig)
			_, _ = fmt.Fprintln(w)

			_, _ = fmt.Fprintln(w, "[Effective Config]")
			rendered, err := config.Render(out.EffectiveConfig)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(w, rendered)
			return nil
		},
	}
}

func printConfigSource(w io.Writer, info domain.ConfigInfo) {
	if info.Path == "" {
		return
	}
	if info.Exists {
		_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
	} else {
		_, _ = fmt.Fprintf(w, "- %s %s\n", info.Path, mutedStyle.Render("(not found)"))
	}
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration template",
		Long: `Write a commented configuration template to .agents/config.toml,
or with --global to $XDG_CONFIG_HOME/agent-task/config.toml.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireConfig(c); err != nil {
				return err
			}
			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{Global: global})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("Created"), pathStyle.Render(out.Path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Initialize the global configuration")

	return cmd
}
