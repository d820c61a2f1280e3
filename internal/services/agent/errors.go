package agent

import (
	"errors"
	"fmt"
)

// InstallHint tells the user how to make the agent available.
const InstallHint = "Install the Codex CLI (npm install -g @openai/codex) and make sure `codex` is on PATH, or set agent.executable in .doccomments.yaml."

var (
	// ErrAgentNotFound is returned when the executable cannot be located or is not a file.
	ErrAgentNotFound = errors.New("agent executable not found")
	// ErrProbeFailed is returned when the executable does not answer the version probe.
	ErrProbeFailed = errors.New("agent executable did not respond to --version")
	// ErrOutputLimitExceeded is returned when the agent writes more than the configured output bound.
	ErrOutputLimitExceeded = errors.New("agent output exceeded the configured limit")
)

// ExecutionError reports a failed agent run together with its captured output.
type ExecutionError struct {
	Err    error
	Stdout string
	Stderr string
}

// Error returns the error string.
func (executionError *ExecutionError) Error() string {
	return fmt.Sprintf("agent run failed: %v", executionError.Err)
}

// Unwrap exposes the wrapped error.
func (executionError *ExecutionError) Unwrap() error {
	return executionError.Err
}
