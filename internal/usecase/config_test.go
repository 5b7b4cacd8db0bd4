package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/agent-task/internal/domain"
	"github.com/runoshun/agent-task/internal/testutil"
	"github.com/runoshun/agent-task/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfig_Execute(t *testing.T) {
	t.Run("returns both config infos and effective config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.RepoConfigInfo = domain.ConfigInfo{
			Path:    "/repo/.agents/config.toml",
			Content: "[push]\nmode = \"never\"",
			Exists:  true,
		}
		manager.GlobalConfigInfo = domain.ConfigInfo{
			Path:    "/home/test/.config/agent-task/config.toml",
			Content: "[log]\nlevel = \"debug\"",
			Exists:  true,
		}
		loader := testutil.NewMockConfigLoader()
		loader.Config.Push.Mode = domain.PushModeNever

		out, err := usecase.NewShowConfig(manager, loader).Execute(context.Background(), usecase.ShowConfigInput{})
		require.NoError(t, err)
		assert.True(t, out.RepoConfig.Exists)
		assert.Equal(t, "/home/test/.config/agent-task/config.toml", out.GlobalConfig.Path)
		assert.Equal(t, domain.PushModeNever, out.EffectiveConfig.Push.Mode)
	})

	t.Run("returns load error", func(t *testing.T) {
		loader := testutil.NewMockConfigLoader()
		loader.LoadErr = errors.New("bad toml")

		_, err := usecase.NewShowConfig(testutil.NewMockConfigManager(), loader).Execute(context.Background(), usecase.ShowConfigInput{})
		assert.ErrorContains(t, err, "bad toml")
	})
}

func TestInitConfig_Execute(t *testing.T) {
	t.Run("creates repo config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.RepoConfigInfo.Path = "/repo/.agents/config.toml"

		out, err := usecase.NewInitConfig(manager).Execute(context.Background(), usecase.InitConfigInput{})
		require.NoError(t, err)
		assert.Equal(t, "/repo/.agents/config.toml", out.Path)
		assert.True(t, manager.InitRepoCalled)
		assert.False(t, manager.InitGlobalCalled)
	})

	t.Run("creates global config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.GlobalConfigInfo.Path = "/home/test/.config/agent-task/config.toml"

		out, err := usecase.NewInitConfig(manager).Execute(context.Background(), usecase.InitConfigInput{Global: true})
		require.NoError(t, err)
		assert.Equal(t, "/home/test/.config/agent-task/config.toml", out.Path)
		assert.True(t, manager.InitGlobalCalled)
	})

	t.Run("returns error when config already exists", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.InitRepoErr = domain.ErrConfigExists

		_, err := usecase.NewInitConfig(manager).Execute(context.Background(), usecase.InitConfigInput{})
		assert.ErrorIs(t, err, domain.ErrConfigExists)
	})
}
