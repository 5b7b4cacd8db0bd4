// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/agent-task/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	repoRoot      string // Repository root; the repo config lives in .agents/
	globalConfDir string // Path to global config directory (e.g., ~/.config/agent-task)
}

// NewLoader creates a new Loader.
func NewLoader(repoRoot string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(repoRoot, globalConfDir string) *Loader {
	return &Loader{
		repoRoot:      repoRoot,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (repo + global).
// Repository config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.LoadRepo()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- repo (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}

	if err := base.Validate(); err != nil {
		return nil, err
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadRepo returns only the repository configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	if l.repoRoot == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(domain.RepoConfigPath(l.repoRoot))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path is derived from trusted locations
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		switch section {
		case "editor":
			if s, ok := value.(string); ok {
				res.Editor = s
			} else {
				warnings = append(warnings, "editor must be a string")
			}
		case "vcs":
			m, ok := value.(map[string]any)
			if !ok {
				warnings = append(warnings, "[vcs] must be a table")
				continue
			}
			for k, v := range m {
				switch k {
				case "remote":
					if s, ok := v.(string); ok {
						res.VCS.Remote = s
					}
				case "default_branch":
					if s, ok := v.(string); ok {
						res.VCS.DefaultBranch = s
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [vcs]: %s", k))
				}
			}
		case "push":
			m, ok := value.(map[string]any)
			if !ok {
				warnings = append(warnings, "[push] must be a table")
				continue
			}
			for k, v := range m {
				switch k {
				case "mode":
					if s, ok := v.(string); ok {
						res.Push.Mode = s
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [push]: %s", k))
				}
			}
		case "log":
			m, ok := value.(map[string]any)
			if !ok {
				warnings = append(warnings, "[log] must be a table")
				continue
			}
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), override.Warnings...)

	if override.Editor != "" {
		result.Editor = override.Editor
	}
	if override.VCS.Remote != "" {
		result.VCS.Remote = override.VCS.Remote
	}
	if override.VCS.DefaultBranch != "" {
		result.VCS.DefaultBranch = override.VCS.DefaultBranch
	}
	if override.Push.Mode != "" {
		result.Push.Mode = override.Push.Mode
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	return &result
}
