package domain

import (
	_ "embed"
	"fmt"
)

//go:embed config_template.toml
var configTemplateContent string

// Push modes for [push] mode.
const (
	PushModeAsk    = "ask"
	PushModeAlways = "always"
	PushModeNever  = "never"
)

// DefaultLogLevel is used when [log] level is not set.
const DefaultLogLevel = "info"

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string   `toml:"-"`
	Editor   string     `toml:"editor,omitempty"` // Editor command, may include arguments
	VCS      VCSConfig  `toml:"vcs"`
	Push     PushConfig `toml:"push"`
	Log      LogConfig  `toml:"log"`
}

// VCSConfig holds settings from the [vcs] section.
type VCSConfig struct {
	Remote        string `toml:"remote,omitempty"`         // Remote to push to (git: name, others: URL or path)
	DefaultBranch string `toml:"default_branch,omitempty"` // Overrides default branch detection
}

// PushConfig holds settings from the [push] section.
type PushConfig struct {
	Mode string `toml:"mode,omitempty"` // ask (default), always or never
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// NewDefaultConfig returns a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Push: PushConfig{Mode: PushModeAsk},
		Log:  LogConfig{Level: DefaultLogLevel},
	}
}

// PushChoice maps [push] mode to a push decision.
func (c *Config) PushChoice() PushChoice {
	switch c.Push.Mode {
	case PushModeAlways:
		return PushYes
	case PushModeNever:
		return PushNo
	default:
		return PushAsk
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Push.Mode {
	case "", PushModeAsk, PushModeAlways, PushModeNever:
	default:
		return fmt.Errorf("invalid [push] mode %q (expected ask, always or never)", c.Push.Mode)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid [log] level %q (expected debug, info, warn or error)", c.Log.Level)
	}
	return nil
}

// ConfigTemplate returns the commented template written by `config init`.
func ConfigTemplate() string {
	return configTemplateContent
}

// ConfigInfo describes a configuration file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}
