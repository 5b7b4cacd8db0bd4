package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Commit message markers.
const (
	StartBranchTag  = "Start-Agent-Branch"
	TargetRemoteTag = "Target-Remote"
	DevshellTag     = "Start-Agent-Devshell"

	// FollowUpDelimiter separates appended sections in a task file.
	FollowUpDelimiter = "\n--- FOLLOW UP TASK ---\n"
	// FollowUpCommitMessage is used for commits that append to a task file.
	FollowUpCommitMessage = "Follow-up task"
)

// TaskFileRelPath returns the repository-relative path of a task file
// created at t for the given slug: .agents/tasks/YYYY/MM/DD-HHMM-slug.
// The timestamp is taken in UTC.
func TaskFileRelPath(t time.Time, slug string) string {
	u := t.UTC()
	return filepath.Join(AgentsDir, TasksDirName,
		u.Format("2006"),
		u.Format("01"),
		fmt.Sprintf("%s-%s", u.Format("02-1504"), slug),
	)
}

// IsTaskFilePath reports whether a repository-relative path lies in the task tree.
func IsTaskFilePath(rel string) bool {
	rel = filepath.ToSlash(rel)
	return strings.HasPrefix(rel, AgentsDir+"/"+TasksDirName+"/")
}

// TaskContent is the task file of an agent branch as read from the repository.
type TaskContent struct {
	Branch  string
	RelPath string // Repository-relative, slash-separated
	Path    string // Absolute path in the working copy; empty when Branch is not checked out
	Content string
}

// Ref renders the task file as branch:path.
func (t *TaskContent) Ref() string {
	return t.Branch + ":" + t.RelPath
}

// TaskCommit is the structured content of a task start commit message.
type TaskCommit struct {
	Branch       string
	TargetRemote string
	Devshell     string
}

// Message renders the commit message.
func (c TaskCommit) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", StartBranchTag, c.Branch)
	if c.TargetRemote != "" {
		fmt.Fprintf(&b, "\n%s: %s", TargetRemoteTag, c.TargetRemote)
	}
	if c.Devshell != "" {
		fmt.Fprintf(&b, "\n%s: %s", DevshellTag, c.Devshell)
	}
	return b.String()
}

// ParseTaskCommit extracts the markers from a commit message.
// ok is false when the message carries no Start-Agent-Branch line.
func ParseTaskCommit(message string) (c TaskCommit, ok bool) {
	for _, line := range strings.Split(message, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case StartBranchTag:
			c.Branch = value
			ok = value != ""
		case TargetRemoteTag:
			c.TargetRemote = value
		case DevshellTag:
			c.Devshell = value
		}
	}
	return c, ok
}

// StartBranchLine is the exact line identifying the start commit of branch.
func StartBranchLine(branch string) string {
	return fmt.Sprintf("%s: %s", StartBranchTag, branch)
}
