package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/agent-task/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRoot(t *testing.T) {
	tests := []struct {
		name    string
		marker  string
		isDir   bool
		backend domain.Backend
	}{
		{"git directory", ".git", true, domain.BackendGit},
		{"git worktree file", ".git", false, domain.BackendGit},
		{"mercurial", ".hg", true, domain.BackendHg},
		{"bazaar", ".bzr", true, domain.BackendBzr},
		{"fossil checkout file", ".fslckout", false, domain.BackendFossil},
		{"legacy fossil checkout", "_FOSSIL_", false, domain.BackendFossil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			markerPath := filepath.Join(root, tt.marker)
			if tt.isDir {
				require.NoError(t, os.Mkdir(markerPath, 0o755))
			} else {
				require.NoError(t, os.WriteFile(markerPath, []byte("x"), 0o644))
			}
			nested := filepath.Join(root, "a", "b")
			require.NoError(t, os.MkdirAll(nested, 0o755))

			gotRoot, gotBackend, err := DetectRoot(nested)
			require.NoError(t, err)
			assert.Equal(t, root, gotRoot)
			assert.Equal(t, tt.backend, gotBackend)
		})
	}
}

func TestDetectRoot_FirstMarkerWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".hg"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	_, backend, err := DetectRoot(root)
	require.NoError(t, err)
	assert.Equal(t, domain.BackendGit, backend)
}

func TestDetectRoot_NearestDirectoryWins(t *testing.T) {
	outer := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(outer, ".git"), 0o755))
	inner := filepath.Join(outer, "vendor", "lib")
	require.NoError(t, os.MkdirAll(filepath.Join(inner, ".hg"), 0o755))

	root, backend, err := DetectRoot(inner)
	require.NoError(t, err)
	assert.Equal(t, inner, root)
	assert.Equal(t, domain.BackendHg, backend)
}

func TestDetectRoot_NotFound(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := DetectRoot(filepath.Dir(dir)); err == nil {
		t.Skip("temporary directory is inside a repository")
	}

	_, _, err := DetectRoot(dir)
	assert.ErrorIs(t, err, domain.ErrNotRepository)
}

func TestGitMetaDir(t *testing.T) {
	t.Run("regular repository", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
		assert.Equal(t, filepath.Join(root, ".git"), gitMetaDir(root))
	})

	t.Run("linked worktree", func(t *testing.T) {
		root := t.TempDir()
		target := filepath.Join(t.TempDir(), "worktrees", "wt")
		content := "gitdir: " + target + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte(content), 0o644))
		assert.Equal(t, target, gitMetaDir(root))
	})
}
