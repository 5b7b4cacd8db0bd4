package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Repository-relative locations used by agent-task.
const (
	AgentsDir        = ".agents"
	TasksDirName     = "tasks"
	ConfigFileName   = "config.toml"
	DevshellsFile    = "devshells.yaml"
	FlakeFile        = "flake.nix"
	appDirName       = "agent-task"
	maxDerivedBranch = 50
)

var mainlineNames = []string{"main", "master", "trunk", "default"}

var (
	validBranchPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	labelPrefixPattern = regexp.MustCompile(`^\s*[A-Za-z][A-Za-z0-9_-]*:\s*`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	invalidRunPattern  = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	dashRunPattern     = regexp.MustCompile(`-{2,}`)
	slugInvalidPattern = regexp.MustCompile(`[^a-z0-9-]+`)
)

// IsMainline reports whether name is a main-line branch: one of the
// conventional names or the repository's default branch.
func IsMainline(name, defaultBranch string) bool {
	if name == "" {
		return false
	}
	if name == defaultBranch {
		return true
	}
	for _, m := range mainlineNames {
		if name == m {
			return true
		}
	}
	return false
}

// ValidateBranchName checks that name can be used for a new agent branch.
func ValidateBranchName(name, defaultBranch string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyBranchName
	}
	if !validBranchPattern.MatchString(name) {
		return fmt.Errorf("%w: %q (allowed characters: A-Z a-z 0-9 . _ -)", ErrInvalidBranchName, name)
	}
	if IsMainline(name, defaultBranch) {
		return fmt.Errorf("%w: %q", ErrMainlineBranch, name)
	}
	return nil
}

// SanitizeBranchName turns free-form input into a valid branch name.
// A leading "label:" prefix is dropped, whitespace runs become a single
// dash, other invalid characters are replaced, and separators are trimmed
// from both ends. The result may be empty.
func SanitizeBranchName(input string) string {
	s := labelPrefixPattern.ReplaceAllString(input, "")
	s = strings.TrimSpace(s)
	s = whitespacePattern.ReplaceAllString(s, "-")
	s = invalidRunPattern.ReplaceAllString(s, "-")
	s = dashRunPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-.")
}

// BranchNameFromDescription derives a branch name from the first
// non-blank line of a task description.
func BranchNameFromDescription(desc string) string {
	var first string
	for _, line := range strings.Split(desc, "\n") {
		if strings.TrimSpace(line) != "" {
			first = line
			break
		}
	}
	name := strings.ToLower(SanitizeBranchName(first))
	if len(name) > maxDerivedBranch {
		name = name[:maxDerivedBranch]
	}
	return strings.Trim(name, "-.")
}

// Slugify derives the task file name component from a branch name.
func Slugify(branch string) (string, error) {
	s := slugInvalidPattern.ReplaceAllString(strings.ToLower(branch), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptySlug, branch)
	}
	return s, nil
}

// RepoConfigPath returns the repository configuration file path.
func RepoConfigPath(root string) string {
	return filepath.Join(root, AgentsDir, ConfigFileName)
}

// DevshellsPath returns the dev-shell declaration file path.
func DevshellsPath(root string) string {
	return filepath.Join(root, AgentsDir, DevshellsFile)
}

// GlobalConfigDir returns the agent-task directory under a config home.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, appDirName)
}

// LogsDir returns the log directory inside a VCS metadata directory.
func LogsDir(metaDir string) string {
	return filepath.Join(metaDir, appDirName, "logs")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(metaDir string) string {
	return filepath.Join(LogsDir(metaDir), "agent-task.log")
}

// BranchLogPath returns the path to the log file of a branch.
func BranchLogPath(metaDir, branch string) string {
	slug, err := Slugify(branch)
	if err != nil {
		slug = "unnamed"
	}
	return filepath.Join(LogsDir(metaDir), "branch-"+slug+".log")
}
