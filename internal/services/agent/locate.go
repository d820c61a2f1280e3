package agent

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultExecutable is the agent looked up on PATH when none is configured.
	DefaultExecutable   = "codex"
	versionFlag         = "--version"
	defaultProbeTimeout = 15 * time.Second

	errorLookupFormat    = "%w: %s: %v"
	errorDirectoryFormat = "%w: %s is a directory"
	errorProbeFormat     = "%w: %s: %s"
)

// Locate resolves the configured executable (a path or a name looked up on PATH) to an absolute
// path and checks that it is an existing regular file. Relative paths resolve against the process
// working directory, not the workspace the agent later runs in.
func (runner *Runner) Locate() (string, error) {
	configured := strings.TrimSpace(runner.config.Executable)
	if configured == "" {
		configured = DefaultExecutable
	}

	resolved := configured
	if !strings.ContainsRune(configured, filepath.Separator) && !strings.ContainsRune(configured, '/') {
		lookedUp, lookupError := runner.lookPath(configured)
		if lookupError != nil {
			return "", fmt.Errorf(errorLookupFormat, ErrAgentNotFound, configured, lookupError)
		}
		resolved = lookedUp
	}
	absolute, absoluteError := filepath.Abs(resolved)
	if absoluteError != nil {
		return "", fmt.Errorf(errorLookupFormat, ErrAgentNotFound, resolved, absoluteError)
	}
	resolved = absolute

	fileInformation, statError := os.Stat(resolved)
	if statError != nil {
		return "", fmt.Errorf(errorLookupFormat, ErrAgentNotFound, resolved, statError)
	}
	if fileInformation.IsDir() {
		return "", fmt.Errorf(errorDirectoryFormat, ErrAgentNotFound, resolved)
	}
	return resolved, nil
}

// Probe runs "<executable> --version" under the probe timeout and returns the reported version.
func (runner *Runner) Probe(ctx context.Context, executable string) (string, error) {
	probeContext, cancel := context.WithTimeout(ctx, runner.config.ProbeTimeout)
	defer cancel()

	// #nosec G204
	command := exec.CommandContext(probeContext, executable, versionFlag)
	var stdoutBuffer bytes.Buffer
	var stderrBuffer bytes.Buffer
	command.Stdout = &stdoutBuffer
	command.Stderr = &stderrBuffer
	if runError := command.Run(); runError != nil {
		diagnostic := strings.TrimSpace(stderrBuffer.String())
		if diagnostic == "" {
			diagnostic = runError.Error()
		}
		return "", fmt.Errorf(errorProbeFormat, ErrProbeFailed, executable, diagnostic)
	}
	return strings.TrimSpace(stdoutBuffer.String()), nil
}
