// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/infra/config"
	"github.com/runoshun/agent-task/internal/infra/devshell"
	"github.com/runoshun/agent-task/internal/infra/editor"
	"github.com/runoshun/agent-task/internal/infra/executor"
	"github.com/runoshun/agent-task/internal/infra/logging"
	"github.com/runoshun/agent-task/internal/infra/prompter"
	"github.com/runoshun/agent-task/internal/infra/taskstore"
	"github.com/runoshun/agent-task/internal/infra/vcs"
	"github.com/runoshun/agent-task/internal/usecase"
)

// Config holds the detected repository paths.
type Config struct {
	RepoRoot string         // Root directory of the working copy
	MetaDir  string         // VCS metadata directory (empty when none)
	Backend  domain.Backend // Detected version control system
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	VCS           domain.VCS
	Tasks         domain.TaskStore
	Runner        domain.CommandRunner
	Editor        domain.Editor
	Prompter      domain.Prompter
	Devshells     domain.DevshellCatalog
	Clock         domain.Clock
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	FileLogger    domain.Logger

	// Pointer fields
	Logger    *slog.Logger
	AppConfig *domain.Config

	closer io.Closer

	// Configuration
	Config Config
}

// New creates a new Container by detecting the repository that contains dir.
func New(dir string) (*Container, error) {
	root, kind, err := vcs.DetectRoot(dir)
	if err != nil {
		return nil, err
	}

	configLoader := config.NewLoader(root)
	appConfig, err := configLoader.Load()
	if err != nil {
		appConfig = domain.NewDefaultConfig()
		appConfig.Warnings = append(appConfig.Warnings, fmt.Sprintf("using default configuration: %v", err))
	}

	runner := executor.NewClient()
	repo, err := vcs.New(root, kind, runner, vcs.Options{
		Remote:        appConfig.VCS.Remote,
		DefaultBranch: appConfig.VCS.DefaultBranch,
	})
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(appConfig.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	fileLogger := logging.New(repo.MetaDir(), level)

	editorCmd, err := editor.Resolve(appConfig.Editor)
	if err != nil {
		appConfig.Warnings = append(appConfig.Warnings, fmt.Sprintf("%v, falling back to %s", err, editor.DefaultProgram))
		editorCmd = editor.Command{Program: editor.DefaultProgram}
	}
	logger.Debug("resolved editor", "command", editorCmd.String(), "run", fileLogger.RunID())

	clock := domain.RealClock{}
	return &Container{
		VCS:           repo,
		Tasks:         taskstore.New(repo, clock, fileLogger),
		Runner:        runner,
		Editor:        editor.New(editorCmd, runner),
		Prompter:      prompter.New(),
		Devshells:     devshell.New(root),
		Clock:         clock,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(root),
		FileLogger:    fileLogger,
		Logger:        logger,
		AppConfig:     appConfig,
		closer:        fileLogger,
		Config: Config{
			RepoRoot: root,
			MetaDir:  repo.MetaDir(),
			Backend:  kind,
		},
	}, nil
}

// NewOutsideRepo creates a Container for commands that work without a
// repository. Only the global configuration is available; VCS is nil.
func NewOutsideRepo() *Container {
	configLoader := config.NewLoader("")
	appConfig, err := configLoader.Load()
	if err != nil {
		appConfig = domain.NewDefaultConfig()
		appConfig.Warnings = append(appConfig.Warnings, fmt.Sprintf("using default configuration: %v", err))
	}
	return &Container{
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(""),
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logging.ParseLevel(appConfig.Log.Level),
		})),
		AppConfig: appConfig,
		Clock:     domain.RealClock{},
	}
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, repo domain.VCS, tasks domain.TaskStore, clock domain.Clock, logger *slog.Logger) *Container {
	return &Container{
		VCS:       repo,
		Tasks:     tasks,
		Clock:     clock,
		Logger:    logger,
		AppConfig: domain.NewDefaultConfig(),
		Config:    cfg,
	}
}

// SetRemote rebinds the repository handle to push to remote.
func (c *Container) SetRemote(remote string) error {
	if c.Runner == nil {
		return nil // Test container with injected ports
	}
	repo, err := vcs.New(c.Config.RepoRoot, c.Config.Backend, c.Runner, vcs.Options{
		Remote:        remote,
		DefaultBranch: c.AppConfig.VCS.DefaultBranch,
	})
	if err != nil {
		return err
	}
	c.VCS = repo
	c.Tasks = taskstore.New(repo, c.Clock, c.fileLogger())
	return nil
}

// Close releases open log files.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *Container) fileLogger() domain.Logger {
	if c.FileLogger == nil {
		return logging.New("", slog.LevelInfo)
	}
	return c.FileLogger
}

// UseCase factory methods

// AcquirePromptUseCase returns a new AcquirePrompt use case.
func (c *Container) AcquirePromptUseCase() *usecase.AcquirePrompt {
	return usecase.NewAcquirePrompt(c.Editor)
}

// CreateTaskUseCase returns a new CreateTask use case.
func (c *Container) CreateTaskUseCase() *usecase.CreateTask {
	return usecase.NewCreateTask(c.VCS, c.Tasks, c.AcquirePromptUseCase(), c.Prompter, c.Devshells, c.AppConfig, c.fileLogger())
}

// StartWorkUseCase returns a new StartWork use case.
func (c *Container) StartWorkUseCase() *usecase.StartWork {
	return usecase.NewStartWork(c.VCS, c.Tasks, c.CreateTaskUseCase())
}

// GetTaskUseCase returns a new GetTask use case.
func (c *Container) GetTaskUseCase() *usecase.GetTask {
	return usecase.NewGetTask(c.VCS, c.Tasks)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
