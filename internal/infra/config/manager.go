package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/agent-task/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	repoRoot      string // Path to repository root
	globalConfDir string // Path to global config directory (e.g., ~/.config/agent-task)
}

// NewManager creates a new Manager.
func NewManager(repoRoot string) *Manager {
	return &Manager{
		repoRoot:      repoRoot,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(repoRoot, globalConfDir string) *Manager {
	return &Manager{
		repoRoot:      repoRoot,
		globalConfDir: globalConfDir,
	}
}

// GetRepoConfigInfo returns information about the repository config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	if m.repoRoot == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(domain.RepoConfigPath(m.repoRoot))
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// InitRepoConfig writes the config template to .agents/config.toml.
func (m *Manager) InitRepoConfig() (string, error) {
	if m.repoRoot == "" {
		return "", domain.ErrNotRepository
	}
	path := domain.RepoConfigPath(m.repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // repository directory
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return path, initConfig(path)
}

// InitGlobalConfig writes the config template to the global config directory.
func (m *Manager) InitGlobalConfig() (string, error) {
	if m.globalConfDir == "" {
		return "", errors.New("global config directory not available")
	}
	if err := os.MkdirAll(m.globalConfDir, 0o700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(m.globalConfDir, domain.ConfigFileName)
	return path, initConfig(path)
}

// Render returns cfg encoded as TOML.
func Render(cfg *domain.Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path) //nolint:gosec // config path is derived from trusted locations
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

func initConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrConfigExists, path)
	}
	return os.WriteFile(path, []byte(domain.ConfigTemplate()), 0o600)
}
