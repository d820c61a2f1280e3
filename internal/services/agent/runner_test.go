package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"
)

const fakeAgentScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "codex-cli 0.42.0"
  exit 0
fi
printf '%s\n' "$@" > "$(dirname "$0")/arguments.txt"
echo "agent stdout"
echo "agent stderr" 1>&2
exit ${FAKE_AGENT_EXIT:-0}
`

func writeExecutable(t *testing.T, directory string, name string, content string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(directory, name)
	if writeError := os.WriteFile(path, []byte(content), 0o755); writeError != nil {
		t.Fatalf("write script: %v", writeError)
	}
	return path
}

func boolPointer(value bool) *bool {
	return &value
}

func TestArguments(t *testing.T) {
	testCases := []struct {
		name          string
		skipOverride  *bool
		hasRepository bool
		expectSkip    bool
	}{
		{name: "repository_present", hasRepository: true, expectSkip: false},
		{name: "repository_absent", hasRepository: false, expectSkip: true},
		{name: "forced_on", skipOverride: boolPointer(true), hasRepository: true, expectSkip: true},
		{name: "forced_off", skipOverride: boolPointer(false), hasRepository: false, expectSkip: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			runner := NewRunner(Config{SkipGitRepoCheck: testCase.skipOverride})
			runner.hasRepository = func(string) bool { return testCase.hasRepository }
			expected := []string{"exec", "--full-auto", "--sandbox", "workspace-write", "--cd", "/work"}
			if testCase.expectSkip {
				expected = append(expected, "--skip-git-repo-check")
			}
			expected = append(expected, "follow it")
			actual := runner.Arguments(Invocation{Workspace: "/work", Prompt: "follow it"})
			if !reflect.DeepEqual(actual, expected) {
				t.Fatalf("unexpected arguments %q, expected %q", actual, expected)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	directory := t.TempDir()
	executable := writeExecutable(t, directory, "codex", fakeAgentScript)

	runner := NewRunner(Config{Executable: executable})
	located, locateError := runner.Locate()
	if locateError != nil || located != executable {
		t.Fatalf("expected %s, got %s (%v)", executable, located, locateError)
	}

	lookedUp := NewRunner(Config{})
	lookedUp.lookPath = func(file string) (string, error) {
		if file != DefaultExecutable {
			t.Fatalf("unexpected lookup of %s", file)
		}
		return executable, nil
	}
	if located, locateError = lookedUp.Locate(); locateError != nil || located != executable {
		t.Fatalf("expected PATH lookup to find %s, got %s (%v)", executable, located, locateError)
	}
}

func TestLocateRelativePathRunsInOtherWorkspace(t *testing.T) {
	toolDirectory := t.TempDir()
	executable := writeExecutable(t, toolDirectory, "codex", fakeAgentScript)
	workingDirectory, cwdError := os.Getwd()
	if cwdError != nil {
		t.Fatalf("getwd: %v", cwdError)
	}
	relative, relativeError := filepath.Rel(workingDirectory, executable)
	if relativeError != nil {
		t.Skipf("no relative path to %s: %v", executable, relativeError)
	}
	if !strings.ContainsRune(relative, filepath.Separator) {
		relative = "." + string(filepath.Separator) + relative
	}

	runner := NewRunner(Config{Executable: relative, SkipGitRepoCheck: boolPointer(true), ProbeTimeout: 5 * time.Second})
	located, locateError := runner.Locate()
	if locateError != nil {
		t.Fatalf("Locate error: %v", locateError)
	}
	if !filepath.IsAbs(located) || located != executable {
		t.Fatalf("expected absolute %s, got %s", executable, located)
	}
	if _, probeError := runner.Probe(context.Background(), located); probeError != nil {
		t.Fatalf("Probe error: %v", probeError)
	}

	workspace := t.TempDir()
	if _, runError := runner.Run(context.Background(), located, Invocation{Workspace: workspace, Prompt: "document"}); runError != nil {
		t.Fatalf("Run from workspace %s error: %v", workspace, runError)
	}
	if _, statError := os.Stat(filepath.Join(toolDirectory, "arguments.txt")); statError != nil {
		t.Fatalf("expected the located agent to run: %v", statError)
	}
}

func TestLocateFailures(t *testing.T) {
	directory := t.TempDir()
	testCases := []struct {
		name       string
		executable string
		lookPath   func(string) (string, error)
	}{
		{name: "missing_path", executable: filepath.Join(directory, "missing")},
		{name: "directory", executable: directory},
		{name: "not_on_path", executable: "codex", lookPath: func(string) (string, error) { return "", errors.New("executable file not found in $PATH") }},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			runner := NewRunner(Config{Executable: testCase.executable})
			if testCase.lookPath != nil {
				runner.lookPath = testCase.lookPath
			}
			if _, locateError := runner.Locate(); !errors.Is(locateError, ErrAgentNotFound) {
				t.Fatalf("expected ErrAgentNotFound, got %v", locateError)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	directory := t.TempDir()
	executable := writeExecutable(t, directory, "codex", fakeAgentScript)
	runner := NewRunner(Config{ProbeTimeout: 5 * time.Second})
	version, probeError := runner.Probe(context.Background(), executable)
	if probeError != nil {
		t.Fatalf("Probe error: %v", probeError)
	}
	if version != "codex-cli 0.42.0" {
		t.Fatalf("unexpected version %q", version)
	}

	broken := writeExecutable(t, directory, "broken", "#!/bin/sh\necho 'missing runtime' 1>&2\nexit 3\n")
	_, probeError = runner.Probe(context.Background(), broken)
	if !errors.Is(probeError, ErrProbeFailed) || !strings.Contains(probeError.Error(), "missing runtime") {
		t.Fatalf("expected ErrProbeFailed with stderr, got %v", probeError)
	}
}

func TestRunCapturesOutput(t *testing.T) {
	directory := t.TempDir()
	executable := writeExecutable(t, directory, "codex", fakeAgentScript)
	runner := NewRunner(Config{SkipGitRepoCheck: boolPointer(true)})

	result, runError := runner.Run(context.Background(), executable, Invocation{Workspace: directory, Prompt: "read the file"})
	if runError != nil {
		t.Fatalf("Run error: %v", runError)
	}
	if strings.TrimSpace(result.Stdout) != "agent stdout" || strings.TrimSpace(result.Stderr) != "agent stderr" {
		t.Fatalf("unexpected output %+v", result)
	}
	recorded, readError := os.ReadFile(filepath.Join(directory, "arguments.txt"))
	if readError != nil {
		t.Fatalf("read recorded arguments: %v", readError)
	}
	expected := strings.Join([]string{"exec", "--full-auto", "--sandbox", "workspace-write", "--cd", directory, "--skip-git-repo-check", "read the file"}, "\n") + "\n"
	if string(recorded) != expected {
		t.Fatalf("unexpected arguments:\n%s\nexpected:\n%s", recorded, expected)
	}
}

func TestRunFailureCarriesStderr(t *testing.T) {
	directory := t.TempDir()
	executable := writeExecutable(t, directory, "codex", fakeAgentScript)
	t.Setenv("FAKE_AGENT_EXIT", "2")
	runner := NewRunner(Config{SkipGitRepoCheck: boolPointer(false)})

	_, runError := runner.Run(context.Background(), executable, Invocation{Workspace: directory, Prompt: "x"})
	var executionError *ExecutionError
	if !errors.As(runError, &executionError) {
		t.Fatalf("expected ExecutionError, got %v", runError)
	}
	if strings.TrimSpace(executionError.Stderr) != "agent stderr" {
		t.Fatalf("expected captured stderr, got %q", executionError.Stderr)
	}
}

func TestRunOutputLimit(t *testing.T) {
	directory := t.TempDir()
	noisy := writeExecutable(t, directory, "noisy", "#!/bin/sh\nwhile true; do echo 0123456789abcdef; done\n")
	runner := NewRunner(Config{MaxOutputBytes: 64, SkipGitRepoCheck: boolPointer(true)})

	result, runError := runner.Run(context.Background(), noisy, Invocation{Workspace: directory, Prompt: "x"})
	if !errors.Is(runError, ErrOutputLimitExceeded) {
		t.Fatalf("expected ErrOutputLimitExceeded, got %v", runError)
	}
	if len(result.Stdout) != 64 {
		t.Fatalf("expected output truncated to the limit, got %d bytes", len(result.Stdout))
	}
}

func TestLimitedBuffer(t *testing.T) {
	exceededCalls := 0
	buffer := newLimitedBuffer(4, func() { exceededCalls++ })
	for _, chunk := range []string{"ab", "cde", "fg"} {
		written, writeError := buffer.Write([]byte(chunk))
		if writeError != nil || written != len(chunk) {
			t.Fatalf("writes must always be accepted, got %d %v", written, writeError)
		}
	}
	if buffer.String() != "abcd" || !buffer.Exceeded() || exceededCalls != 1 {
		t.Fatalf("unexpected buffer state %q exceeded=%v calls=%d", buffer.String(), buffer.Exceeded(), exceededCalls)
	}
}

func TestInstructionFileLifecycle(t *testing.T) {
	workspace := t.TempDir()
	now := time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)
	instructionFile, writeError := WriteInstructionFile(workspace, "Apply edits.", now)
	if writeError != nil {
		t.Fatalf("WriteInstructionFile error: %v", writeError)
	}
	if filepath.Dir(instructionFile.Path) != filepath.Join(workspace, ".doccomments") {
		t.Fatalf("instruction file must live in the hidden directory, got %s", instructionFile.Path)
	}
	if !strings.HasPrefix(filepath.Base(instructionFile.Path), "instructions-20261014T093000000Z-") {
		t.Fatalf("unexpected file name %s", filepath.Base(instructionFile.Path))
	}
	content, readError := os.ReadFile(instructionFile.Path)
	if readError != nil || string(content) != "Apply edits." {
		t.Fatalf("unexpected content %q (%v)", content, readError)
	}

	second, _ := WriteInstructionFile(workspace, "x", now)
	if second.Path == instructionFile.Path {
		t.Fatalf("instruction file names must be unique")
	}

	if removeError := instructionFile.Remove(); removeError != nil {
		t.Fatalf("Remove error: %v", removeError)
	}
	if removeError := instructionFile.Remove(); removeError != nil {
		t.Fatalf("second Remove must be a no-op, got %v", removeError)
	}
	if _, statError := os.Stat(instructionFile.Path); !errors.Is(statError, os.ErrNotExist) {
		t.Fatalf("instruction file still present")
	}
	_ = second.Remove()
	if _, statError := os.Stat(filepath.Join(workspace, ".doccomments")); !errors.Is(statError, os.ErrNotExist) {
		t.Fatalf("empty hidden directory should be removed")
	}
}
