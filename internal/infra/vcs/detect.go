package vcs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/agent-task/internal/domain"
)

// marker is a file or directory whose presence identifies a checkout root.
type marker struct {
	name    string
	backend domain.Backend
}

// markers are checked in order in every directory; the first hit wins.
var markers = []marker{
	{".git", domain.BackendGit},
	{".hg", domain.BackendHg},
	{".bzr", domain.BackendBzr},
	{".fslckout", domain.BackendFossil},
	{"_FOSSIL_", domain.BackendFossil},
}

// DetectRoot walks upward from start looking for a backend marker.
// It returns domain.ErrNotRepository when none is found.
func DetectRoot(start string) (string, domain.Backend, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", start, err)
	}
	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(dir, m.name)); err == nil {
				return dir, m.backend, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", domain.ErrNotRepository
		}
		dir = parent
	}
}
