package usecase

import (
	"context"
	"fmt"
	"os"

	"github.com/runoshun/agent-task/internal/domain"
)

// AcquirePromptInput selects where the task prompt comes from.
// With neither field set, the editor is opened.
type AcquirePromptInput struct {
	Text *string // Literal prompt (--prompt)
	File string  // Prompt file path (--prompt-file)
}

// AcquirePromptOutput contains the acquired prompt.
type AcquirePromptOutput struct {
	Content string // Normalized prompt, empty when Aborted
	Aborted bool   // The prompt was blank; the caller should unwind
}

// AcquirePrompt obtains a task prompt from the editor, a literal string or a file.
type AcquirePrompt struct {
	editor  domain.Editor
	tempDir string
}

// NewAcquirePrompt creates a new AcquirePrompt use case.
// editor may be nil when only literal and file prompts are used.
func NewAcquirePrompt(editor domain.Editor) *AcquirePrompt {
	return &AcquirePrompt{editor: editor}
}

// WithTempDir sets the directory for editor scratch files.
func (uc *AcquirePrompt) WithTempDir(dir string) *AcquirePrompt {
	uc.tempDir = dir
	return uc
}

// Execute reads the prompt from exactly one source.
func (uc *AcquirePrompt) Execute(ctx context.Context, in AcquirePromptInput) (*AcquirePromptOutput, error) {
	if in.Text != nil && in.File != "" {
		return nil, domain.ErrMultiplePromptSources
	}

	var buf string
	switch {
	case in.Text != nil:
		buf = domain.NormalizeLineEndings(*in.Text)
	case in.File != "":
		data, err := os.ReadFile(in.File)
		if err != nil {
			return nil, fmt.Errorf("read prompt file: %w", err)
		}
		buf = domain.NormalizeLineEndings(string(data))
	default:
		edited, err := uc.fromEditor(ctx)
		if err != nil {
			return nil, err
		}
		buf = edited
	}

	if domain.IsEmptyPrompt(buf) {
		return &AcquirePromptOutput{Aborted: true}, nil
	}
	return &AcquirePromptOutput{Content: buf}, nil
}

func (uc *AcquirePrompt) fromEditor(ctx context.Context) (string, error) {
	if uc.editor == nil {
		return "", fmt.Errorf("%w: no editor available", domain.ErrEditorFailed)
	}

	f, err := os.CreateTemp(uc.tempDir, "agent-task-prompt-*.md")
	if err != nil {
		return "", fmt.Errorf("create prompt file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.WriteString(domain.EditorSeed()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write prompt file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write prompt file: %w", err)
	}

	if err := uc.editor.Edit(ctx, path); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) //nolint:gosec // scratch file created above
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	// Normalize first so a CRLF-converting editor still matches the hint.
	return domain.StripEditorHint(domain.NormalizeLineEndings(string(data))), nil
}
