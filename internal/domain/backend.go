package domain

// Backend identifies a version control system.
type Backend string

// Supported backends.
const (
	BackendGit    Backend = "git"
	BackendFossil Backend = "fossil"
	BackendBzr    Backend = "bzr"
	BackendHg     Backend = "hg"
)

// Program returns the command-line tool driving the backend.
func (b Backend) Program() string {
	return string(b)
}

// ConventionalDefaultBranch is the main line used when nothing else is configured.
func (b Backend) ConventionalDefaultBranch() string {
	switch b {
	case BackendHg:
		return "default"
	case BackendBzr:
		return "master"
	case BackendFossil:
		return "trunk"
	default:
		return "main"
	}
}

// SupportsStaging reports whether the backend has an index between the
// working tree and commits.
func (b Backend) SupportsStaging() bool {
	return b == BackendGit
}
