// Package main is the entry point for the agent-task CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runoshun/agent-task/internal/app"
	"github.com/runoshun/agent-task/internal/cli"
	"github.com/runoshun/agent-task/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if cli.IsUsageError(err) {
			fmt.Fprintln(os.Stderr, "Run 'agent-task --help' for usage.")
		}
		os.Exit(1)
	}
}

func run() error {
	// Cancelled on interrupt; the orchestrator still restores the
	// original branch on a detached context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	container, err := app.New(cwd)
	if err != nil {
		// Allow help, version and config outside a repository
		if errors.Is(err, domain.ErrNotRepository) && canRunWithoutRepo(os.Args[1:]) {
			return cli.NewRootCommand(app.NewOutsideRepo(), version).ExecuteContext(ctx)
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	return cli.NewRootCommand(container, version).ExecuteContext(ctx)
}

func canRunWithoutRepo(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if args[0] == "help" || args[0] == "completion" || args[0] == "config" {
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "-v" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
