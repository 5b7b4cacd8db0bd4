package domain

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, PushModeAsk, cfg.Push.Mode)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, PushAsk, cfg.PushChoice())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_PushChoice(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Push.Mode = PushModeAlways
	assert.Equal(t, PushYes, cfg.PushChoice())
	cfg.Push.Mode = PushModeNever
	assert.Equal(t, PushNo, cfg.PushChoice())
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Push.Mode = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestConfigTemplate_IsValidTOML(t *testing.T) {
	var cfg Config
	require.NoError(t, toml.Unmarshal([]byte(ConfigTemplate()), &cfg))
	assert.Equal(t, PushModeAsk, cfg.Push.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
}
