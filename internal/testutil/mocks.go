// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/runoshun/agent-task/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockCommit is a commit recorded by MockVCS.
type MockCommit struct {
	Branch  string
	Path    string
	Message string
	Content string
}

// MockVCS is an in-memory test double for domain.VCS.
// Fields are ordered to minimize memory padding.
type MockVCS struct {
	Branches    map[string]bool
	Agents      map[string]*domain.AgentCommit
	StartErr    error
	CheckoutErr error
	CommitErr   error
	PushErr     error
	DiscardErr  error
	CurrentErr  error
	Ops         []string
	Commits     []MockCommit
	Pushed      []string
	Discarded   []string
	RootDir     string
	Current     string
	Default     string
	RemoteAddr  string
	Kind        domain.Backend
	Staged      bool
}

// Ensure MockVCS implements domain.VCS interface.
var _ domain.VCS = (*MockVCS)(nil)

// NewMockVCS creates a git-flavored MockVCS on branch main rooted at root.
func NewMockVCS(root string) *MockVCS {
	return &MockVCS{
		Branches: map[string]bool{"main": true},
		Agents:   make(map[string]*domain.AgentCommit),
		RootDir:  root,
		Current:  "main",
		Default:  "main",
		Kind:     domain.BackendGit,
	}
}

func (m *MockVCS) op(format string, args ...any) {
	m.Ops = append(m.Ops, fmt.Sprintf(format, args...))
}

// Root returns the configured root.
func (m *MockVCS) Root() string { return m.RootDir }

// Backend returns the configured backend.
func (m *MockVCS) Backend() domain.Backend { return m.Kind }

// MetaDir returns "" so loggers stay disabled.
func (m *MockVCS) MetaDir() string { return "" }

// CurrentBranch returns the current branch or the configured error.
func (m *MockVCS) CurrentBranch(context.Context) (string, error) {
	if m.CurrentErr != nil {
		return "", m.CurrentErr
	}
	return m.Current, nil
}

// DefaultBranch returns the configured default branch.
func (m *MockVCS) DefaultBranch(context.Context) (string, error) {
	return m.Default, nil
}

// BranchExists reports whether the branch is known.
func (m *MockVCS) BranchExists(_ context.Context, name string) (bool, error) {
	return m.Branches[name], nil
}

// StartBranch creates and switches to name.
func (m *MockVCS) StartBranch(_ context.Context, name string) error {
	m.op("start %s", name)
	if m.StartErr != nil {
		return m.StartErr
	}
	if m.Branches[name] {
		return fmt.Errorf("%w: %s", domain.ErrBranchExists, name)
	}
	m.Branches[name] = true
	m.Current = name
	return nil
}

// CheckoutBranch switches to name.
func (m *MockVCS) CheckoutBranch(_ context.Context, name string) error {
	m.op("checkout %s", name)
	if m.CheckoutErr != nil {
		return m.CheckoutErr
	}
	if m.Current == name {
		return nil
	}
	if !m.Branches[name] {
		return fmt.Errorf("mock: unknown branch %s", name)
	}
	m.Current = name
	return nil
}

// CommitFile records a commit of path on the current branch.
func (m *MockVCS) CommitFile(_ context.Context, path, message string) error {
	m.op("commit %s", m.Current)
	if m.CommitErr != nil {
		return m.CommitErr
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(m.RootDir, path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("mock: read committed file: %w", err)
	}
	rel, _ := filepath.Rel(m.RootDir, abs)
	m.Commits = append(m.Commits, MockCommit{
		Branch:  m.Current,
		Path:    filepath.ToSlash(rel),
		Message: message,
		Content: string(data),
	})
	if tc, ok := domain.ParseTaskCommit(message); ok && tc.Branch == m.Current {
		m.Agents[m.Current] = &domain.AgentCommit{
			ID:      fmt.Sprintf("c%d", len(m.Commits)),
			Message: message,
			Files:   []string{filepath.ToSlash(rel)},
		}
	}
	return nil
}

// PushBranch records the push.
func (m *MockVCS) PushBranch(_ context.Context, name string) error {
	m.op("push %s", name)
	if m.PushErr != nil {
		return m.PushErr
	}
	m.Pushed = append(m.Pushed, name)
	return nil
}

// DiscardBranch removes name.
func (m *MockVCS) DiscardBranch(_ context.Context, name string) error {
	m.op("discard %s", name)
	if m.DiscardErr != nil {
		return m.DiscardErr
	}
	delete(m.Branches, name)
	delete(m.Agents, name)
	m.Discarded = append(m.Discarded, name)
	return nil
}

// HasStagedChanges returns the configured value.
func (m *MockVCS) HasStagedChanges(context.Context) (bool, error) {
	return m.Staged, nil
}

// HasUncommittedChanges returns the configured staged value.
func (m *MockVCS) HasUncommittedChanges(context.Context) (bool, error) {
	return m.Staged, nil
}

// RemoteURL returns the configured remote.
func (m *MockVCS) RemoteURL(context.Context) (string, error) {
	return m.RemoteAddr, nil
}

// AgentCommit returns the recorded agent commit of branch.
func (m *MockVCS) AgentCommit(_ context.Context, branch string) (*domain.AgentCommit, error) {
	if c, ok := m.Agents[branch]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: branch %s", domain.ErrAgentCommitNotFound, branch)
}

// ReadFileAt returns the content of the last commit of path on branch.
func (m *MockVCS) ReadFileAt(_ context.Context, branch, path string) (string, error) {
	rel := path
	if filepath.IsAbs(rel) {
		rel, _ = filepath.Rel(m.RootDir, path)
	}
	rel = filepath.ToSlash(rel)
	for i := len(m.Commits) - 1; i >= 0; i-- {
		if c := m.Commits[i]; c.Branch == branch && c.Path == rel {
			return c.Content, nil
		}
	}
	return "", fmt.Errorf("mock: %s not committed on %s", rel, branch)
}

// MockTaskRecord is a call recorded by MockTaskStore.
type MockTaskRecord struct {
	Branch   string
	Content  string
	Devshell string
}

// MockTaskStore is a test double for domain.TaskStore.
// Fields are ordered to minimize memory padding.
type MockTaskStore struct {
	Files     map[string]string // branch -> task file content
	Root      string            // Prefix of the synthetic task file paths
	RecordErr error
	AppendErr error
	Recorded  []MockTaskRecord
	Appended  []MockTaskRecord
}

// Ensure MockTaskStore implements domain.TaskStore interface.
var _ domain.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Files: make(map[string]string), Root: "/repo"}
}

// RecordInitialTask records the call and stores content.
func (m *MockTaskStore) RecordInitialTask(_ context.Context, content, branch, devshell string) (string, error) {
	m.Recorded = append(m.Recorded, MockTaskRecord{Branch: branch, Content: content, Devshell: devshell})
	if m.RecordErr != nil {
		return "", m.RecordErr
	}
	if _, ok := m.Files[branch]; ok {
		return "", domain.ErrTaskFileExists
	}
	m.Files[branch] = content
	return m.path(branch), nil
}

// AppendTask records the call and appends content.
func (m *MockTaskStore) AppendTask(_ context.Context, branch, content string) (string, error) {
	m.Appended = append(m.Appended, MockTaskRecord{Branch: branch, Content: content})
	if m.AppendErr != nil {
		return "", m.AppendErr
	}
	existing, ok := m.Files[branch]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotAgentBranch, branch)
	}
	m.Files[branch] = existing + domain.FollowUpDelimiter + content
	return m.path(branch), nil
}

// TaskFile returns a synthetic path for agent branches.
func (m *MockTaskStore) TaskFile(_ context.Context, branch string) (string, error) {
	if _, ok := m.Files[branch]; !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotAgentBranch, branch)
	}
	return m.path(branch), nil
}

// ReadTask returns the stored content of branch.
func (m *MockTaskStore) ReadTask(_ context.Context, branch string) (*domain.TaskContent, error) {
	content, ok := m.Files[branch]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotAgentBranch, branch)
	}
	return &domain.TaskContent{
		Branch:  branch,
		RelPath: m.relPath(branch),
		Content: content,
	}, nil
}

func (m *MockTaskStore) path(branch string) string {
	return filepath.Join(m.Root, filepath.FromSlash(m.relPath(branch)))
}

func (m *MockTaskStore) relPath(branch string) string {
	return ".agents/tasks/2025/01/01-0000-" + branch
}

// MockEditor is a test double for domain.Editor. It records the scratch
// file content it was given and replaces it with Content.
type MockEditor struct {
	Err     error
	Seen    string
	Content string
	Calls   int
}

// Ensure MockEditor implements domain.Editor interface.
var _ domain.Editor = (*MockEditor)(nil)

// Edit simulates an editor session.
func (m *MockEditor) Edit(_ context.Context, path string) error {
	m.Calls++
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m.Seen = string(data)
	if m.Err != nil {
		return m.Err
	}
	return os.WriteFile(path, []byte(m.Content), 0o600)
}

// MockPrompter is a test double for domain.Prompter.
type MockPrompter struct {
	Err    error
	Asked  []string
	Answer bool
}

// Ensure MockPrompter implements domain.Prompter interface.
var _ domain.Prompter = (*MockPrompter)(nil)

// Confirm records the question and returns the configured answer.
func (m *MockPrompter) Confirm(_ context.Context, question string, _ bool) (bool, error) {
	m.Asked = append(m.Asked, question)
	if m.Err != nil {
		return false, m.Err
	}
	return m.Answer, nil
}

// MockDevshells is a test double for domain.DevshellCatalog.
type MockDevshells struct {
	Err   error
	Shell []string
}

// Ensure MockDevshells implements domain.DevshellCatalog interface.
var _ domain.DevshellCatalog = (*MockDevshells)(nil)

// Names returns the configured names or error.
func (m *MockDevshells) Names() ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Shell, nil
}

// MockLogger records log entries as "LEVEL branch category: msg".
type MockLogger struct {
	Entries []string
}

// Ensure MockLogger implements domain.Logger interface.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) add(level, branch, category, msg string) {
	m.Entries = append(m.Entries, fmt.Sprintf("%s %s %s: %s", level, branch, category, msg))
}

// Info records an info entry.
func (m *MockLogger) Info(branch, category, msg string) { m.add("INFO", branch, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(branch, category, msg string) { m.add("DEBUG", branch, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(branch, category, msg string) { m.add("WARN", branch, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(branch, category, msg string) { m.add("ERROR", branch, category, msg) }

// Has reports whether any entry contains substr.
func (m *MockLogger) Has(substr string) bool {
	for _, e := range m.Entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
	GlobalErr    error
}

// NewMockConfigLoader creates a new MockConfigLoader with default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{
		Config: domain.NewDefaultConfig(),
	}
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the configured config or error.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.GlobalErr != nil {
		return nil, m.GlobalErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	RepoConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{}
}

// GetRepoConfigInfo returns the configured repository config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call.
func (m *MockConfigManager) InitRepoConfig() (string, error) {
	m.InitRepoCalled = true
	if m.InitRepoErr != nil {
		return "", m.InitRepoErr
	}
	return m.RepoConfigInfo.Path, nil
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig() (string, error) {
	m.InitGlobalCalled = true
	if m.InitGlobalErr != nil {
		return "", m.InitGlobalErr
	}
	return m.GlobalConfigInfo.Path, nil
}
