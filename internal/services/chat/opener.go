// Package chat opens the editor's AI chat panel through an external command.
package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// DefaultCommand opens the chat panel of Visual Studio Code.
const DefaultCommand = "code chat"

const (
	errorParseCommandFormat = "parse chat command %q: %w"
	errorRunCommandFormat   = "run chat command %s: %w"
	errorRunCommandDetailed = "run chat command %s: %w: %s"
)

// ErrEmptyCommand is returned when the chat command has no program.
var ErrEmptyCommand = errors.New("chat command is empty")

// Opener opens the chat panel. An empty prefill opens it without a prompt.
type Opener interface {
	Open(ctx context.Context, prefill string) error
}

// Launcher executes a program with arguments and returns its captured stderr.
type Launcher func(ctx context.Context, name string, arguments []string) ([]byte, error)

// CommandOpener runs a configured command line with the prompt as its final argument.
type CommandOpener struct {
	program   string
	arguments []string
	launch    Launcher
}

// NewCommandOpener splits commandLine with POSIX shell field rules, expanding environment variables.
func NewCommandOpener(commandLine string, launch Launcher) (*CommandOpener, error) {
	if strings.TrimSpace(commandLine) == "" {
		commandLine = DefaultCommand
	}
	fields, parseError := shell.Fields(commandLine, os.Getenv)
	if parseError != nil {
		return nil, fmt.Errorf(errorParseCommandFormat, commandLine, parseError)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	if launch == nil {
		launch = RunProcess
	}
	return &CommandOpener{program: fields[0], arguments: fields[1:], launch: launch}, nil
}

// Argv returns the full argument vector used for prefill ("" for none).
func (opener *CommandOpener) Argv(prefill string) []string {
	argv := append([]string{opener.program}, opener.arguments...)
	if prefill != "" {
		argv = append(argv, prefill)
	}
	return argv
}

// Open launches the chat command.
func (opener *CommandOpener) Open(ctx context.Context, prefill string) error {
	argv := opener.Argv(prefill)
	stderrOutput, launchError := opener.launch(ctx, argv[0], argv[1:])
	if launchError == nil {
		return nil
	}
	diagnostic := strings.TrimSpace(string(stderrOutput))
	if diagnostic != "" {
		return fmt.Errorf(errorRunCommandDetailed, opener.program, launchError, diagnostic)
	}
	return fmt.Errorf(errorRunCommandFormat, opener.program, launchError)
}

// RunProcess is the default Launcher built on exec.CommandContext.
func RunProcess(ctx context.Context, name string, arguments []string) ([]byte, error) {
	// #nosec G204
	command := exec.CommandContext(ctx, name, arguments...)
	var stderrBuffer bytes.Buffer
	command.Stderr = &stderrBuffer
	runError := command.Run()
	return stderrBuffer.Bytes(), runError
}

var _ Opener = (*CommandOpener)(nil)
