// Package logging provides file-based logging for agent-task.
// It outputs logs to a global log file (<meta>/agent-task/logs/agent-task.log)
// and branch-specific log files (<meta>/agent-task/logs/branch-<slug>.log).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runoshun/agent-task/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes plain-text log lines to files under the VCS metadata directory.
// Fields are ordered to minimize memory padding.
type Logger struct {
	globalFile  *os.File
	branchFiles map[string]*os.File
	now         func() time.Time
	metaDir     string
	runID       string
	mu          sync.Mutex
	level       slog.Level
}

// New creates a new Logger that writes below metaDir.
// If metaDir is empty, logging is disabled (returns a no-op logger).
// Every Logger gets a fresh run id so lines from one invocation can be
// correlated across files.
func New(metaDir string, level slog.Level) *Logger {
	return &Logger{
		metaDir:     metaDir,
		level:       level,
		runID:       uuid.NewString()[:8],
		now:         time.Now,
		branchFiles: make(map[string]*os.File),
	}
}

// RunID returns the identifier stamped on every line of this invocation.
func (l *Logger) RunID() string {
	return l.runID
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) ensureLogsDir() error {
	return os.MkdirAll(domain.LogsDir(l.metaDir), 0o750)
}

// ensureGlobalFile opens or returns the global log file.
func (l *Logger) ensureGlobalFile() (*os.File, error) {
	if l.globalFile != nil {
		return l.globalFile, nil
	}
	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := openAppend(domain.GlobalLogPath(l.metaDir))
	if err != nil {
		return nil, fmt.Errorf("open global log file: %w", err)
	}
	l.globalFile = f
	return f, nil
}

// ensureBranchFile opens or returns the log file of branch.
func (l *Logger) ensureBranchFile(branch string) (*os.File, error) {
	if f, ok := l.branchFiles[branch]; ok {
		return f, nil
	}
	if err := l.ensureLogsDir(); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := openAppend(domain.BranchLogPath(l.metaDir, branch))
	if err != nil {
		return nil, fmt.Errorf("open branch log file: %w", err)
	}
	l.branchFiles[branch] = f
	return f, nil
}

func openAppend(path string) (*os.File, error) {
	// G302: Log files are append-only and need read access by repository users
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for name, f := range l.branchFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.branchFiles, name)
	}
	return lastErr
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [1a2b3c4d] [fix-login] [category] message
func formatLog(t time.Time, level slog.Level, runID, branch, category, msg string) string {
	if branch == "" {
		branch = "global"
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		runID,
		branch,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes an entry to the global log and, when branch is set, to the
// branch log as well.
func (l *Logger) log(level slog.Level, branch, category, msg string) {
	if l.metaDir == "" {
		return // Logging disabled
	}
	if level < l.level {
		return
	}

	entry := formatLog(l.now(), level, l.runID, branch, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gf, err := l.ensureGlobalFile(); err == nil {
		_, _ = io.WriteString(gf, entry)
	}
	if branch != "" {
		if bf, err := l.ensureBranchFile(branch); err == nil {
			_, _ = io.WriteString(bf, entry)
		}
	}
}

// Info logs an info message.
func (l *Logger) Info(branch, category, msg string) {
	l.log(slog.LevelInfo, branch, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(branch, category, msg string) {
	l.log(slog.LevelDebug, branch, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(branch, category, msg string) {
	l.log(slog.LevelWarn, branch, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(branch, category, msg string) {
	l.log(slog.LevelError, branch, category, msg)
}
