package domain

import "strings"

// EditorHint is appended to the editor scratch file and removed afterwards.
const EditorHint = `# Please write your task prompt above.
# Enter an empty prompt to abort the task creation process.
# Feel free to leave this comment in the file. It will be ignored.`

// EditorSeed is the initial content of the editor scratch file.
func EditorSeed() string {
	return "\n" + EditorHint
}

// NormalizeLineEndings converts CRLF line endings to LF.
func NormalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// StripEditorHint removes one occurrence of the hint block, preferring the
// variant preceded by a newline.
func StripEditorHint(s string) string {
	if withNL := "\n" + EditorHint; strings.Contains(s, withNL) {
		return strings.Replace(s, withNL, "", 1)
	}
	return strings.Replace(s, EditorHint, "", 1)
}

// IsEmptyPrompt reports whether a prompt buffer contains only whitespace.
func IsEmptyPrompt(s string) bool {
	return strings.TrimSpace(s) == ""
}
