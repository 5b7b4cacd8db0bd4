package domain

// ExecCommand represents an external command to be executed.
// This type is used to pass command information between layers
// without exposing implementation details.
type ExecCommand struct {
	Program string
	Dir     string
	Args    []string
	Env     []string // Extra KEY=VALUE pairs appended to the inherited environment
}

// NewCommand creates an ExecCommand running program with args in dir.
func NewCommand(program string, args []string, dir string) *ExecCommand {
	return &ExecCommand{
		Program: program,
		Args:    args,
		Dir:     dir,
	}
}

// ExecResult is the outcome of a command that was started successfully.
// A non-zero ExitCode is not an error at this level.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status 0.
func (r *ExecResult) Success() bool {
	return r.ExitCode == 0
}
