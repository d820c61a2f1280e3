// Package agent locates, probes and runs the external documentation agent (the Codex CLI).
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/doccomments/internal/utils"
)

const (
	// DefaultSandbox grants the agent read/write access to the workspace only.
	DefaultSandbox = "workspace-write"
	// DefaultMaxOutputBytes bounds each captured output stream.
	DefaultMaxOutputBytes int64 = 10 * 1024 * 1024

	execSubcommand       = "exec"
	fullAutoFlag         = "--full-auto"
	sandboxFlag          = "--sandbox"
	workingDirectoryFlag = "--cd"
	skipGitCheckFlag     = "--skip-git-repo-check"

	errorPipeFormat   = "open agent %s pipe: %w"
	errorStartFormat  = "start agent %s: %w"
	errorCopyFormat   = "read agent output: %w"
	errorLimitFormat  = "%w (%s per stream)"
	stdoutStreamLabel = "stdout"
	stderrStreamLabel = "stderr"
)

// Config controls how the agent is located and invoked.
type Config struct {
	Executable string
	Sandbox    string
	// SkipGitRepoCheck forces the repository-check bypass on or off; nil detects it from the workspace.
	SkipGitRepoCheck *bool
	MaxOutputBytes   int64
	ProbeTimeout     time.Duration
}

// Invocation is a single agent run.
type Invocation struct {
	Workspace string
	Prompt    string
}

// Result holds the captured output of a completed run.
type Result struct {
	Stdout string
	Stderr string
}

// Runner drives the agent executable.
type Runner struct {
	config        Config
	lookPath      func(file string) (string, error)
	hasRepository func(directory string) bool
}

// NewRunner constructs a Runner with defaults applied.
func NewRunner(config Config) *Runner {
	normalized := config
	if strings.TrimSpace(normalized.Sandbox) == "" {
		normalized.Sandbox = DefaultSandbox
	}
	if normalized.MaxOutputBytes <= 0 {
		normalized.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if normalized.ProbeTimeout <= 0 {
		normalized.ProbeTimeout = defaultProbeTimeout
	}
	return &Runner{config: normalized, lookPath: exec.LookPath, hasRepository: utils.HasRepository}
}

// Arguments returns the fixed argument list for invocation.
func (runner *Runner) Arguments(invocation Invocation) []string {
	arguments := []string{
		execSubcommand,
		fullAutoFlag,
		sandboxFlag, runner.config.Sandbox,
		workingDirectoryFlag, invocation.Workspace,
	}
	if runner.skipGitRepoCheck(invocation.Workspace) {
		arguments = append(arguments, skipGitCheckFlag)
	}
	return append(arguments, invocation.Prompt)
}

func (runner *Runner) skipGitRepoCheck(workspace string) bool {
	if runner.config.SkipGitRepoCheck != nil {
		return *runner.config.SkipGitRepoCheck
	}
	return !runner.hasRepository(workspace)
}

// Run executes the agent and waits for it without a timeout. Each output stream is bounded by
// MaxOutputBytes; exceeding the bound stops the agent and fails the run.
func (runner *Runner) Run(ctx context.Context, executable string, invocation Invocation) (Result, error) {
	runContext, cancel := context.WithCancel(ctx)
	defer cancel()

	// #nosec G204
	command := exec.CommandContext(runContext, executable, runner.Arguments(invocation)...)
	command.Dir = invocation.Workspace

	stdoutPipe, stdoutPipeError := command.StdoutPipe()
	if stdoutPipeError != nil {
		return Result{}, fmt.Errorf(errorPipeFormat, stdoutStreamLabel, stdoutPipeError)
	}
	stderrPipe, stderrPipeError := command.StderrPipe()
	if stderrPipeError != nil {
		return Result{}, fmt.Errorf(errorPipeFormat, stderrStreamLabel, stderrPipeError)
	}

	stdoutBuffer := newLimitedBuffer(runner.config.MaxOutputBytes, cancel)
	stderrBuffer := newLimitedBuffer(runner.config.MaxOutputBytes, cancel)

	if startError := command.Start(); startError != nil {
		return Result{}, fmt.Errorf(errorStartFormat, executable, startError)
	}

	var pumps errgroup.Group
	pumps.Go(func() error {
		_, copyError := io.Copy(stdoutBuffer, stdoutPipe)
		return copyError
	})
	pumps.Go(func() error {
		_, copyError := io.Copy(stderrBuffer, stderrPipe)
		return copyError
	})
	copyError := pumps.Wait()
	waitError := command.Wait()

	result := Result{Stdout: stdoutBuffer.String(), Stderr: stderrBuffer.String()}
	if stdoutBuffer.Exceeded() || stderrBuffer.Exceeded() {
		limitError := fmt.Errorf(errorLimitFormat, ErrOutputLimitExceeded, utils.FormatFileSize(runner.config.MaxOutputBytes))
		return result, &ExecutionError{Err: limitError, Stdout: result.Stdout, Stderr: result.Stderr}
	}
	if waitError != nil {
		return result, &ExecutionError{Err: waitError, Stdout: result.Stdout, Stderr: result.Stderr}
	}
	if copyError != nil && !errors.Is(copyError, io.ErrClosedPipe) {
		return result, &ExecutionError{Err: fmt.Errorf(errorCopyFormat, copyError), Stdout: result.Stdout, Stderr: result.Stderr}
	}
	return result, nil
}
