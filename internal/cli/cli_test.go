package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/temirov/doccomments/internal/dispatcher"
	"github.com/temirov/doccomments/internal/notify"
	"github.com/temirov/doccomments/internal/services/bridge"
)

type recordingOpener struct {
	mutex    sync.Mutex
	prefills []string
}

func (opener *recordingOpener) Open(_ context.Context, prefill string) error {
	opener.mutex.Lock()
	defer opener.mutex.Unlock()
	opener.prefills = append(opener.prefills, prefill)
	return nil
}

type discardClipboard struct{}

func (discardClipboard) WriteText(context.Context, string) error {
	return nil
}

// synchronizedBuffer lets the serve test read output while the server writes it.
type synchronizedBuffer struct {
	mutex  sync.Mutex
	buffer bytes.Buffer
}

func (buffer *synchronizedBuffer) Write(data []byte) (int, error) {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buffer.Write(data)
}

func (buffer *synchronizedBuffer) String() string {
	buffer.mutex.Lock()
	defer buffer.mutex.Unlock()
	return buffer.buffer.String()
}

type testHarness struct {
	env        environment
	stdout     *synchronizedBuffer
	opener     *recordingOpener
	notifier   *notify.Recorder
	workingDir string
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	harness := &testHarness{
		stdout:     &synchronizedBuffer{},
		opener:     &recordingOpener{},
		notifier:   &notify.Recorder{},
		workingDir: t.TempDir(),
	}
	harness.env = environment{
		stdin:      strings.NewReader(""),
		stdout:     harness.stdout,
		stderr:     &synchronizedBuffer{},
		workingDir: func() (string, error) { return harness.workingDir, nil },
		customize: func(dependencies *dispatcher.Dependencies) {
			dependencies.Chat = harness.opener
			dependencies.Clipboard = discardClipboard{}
			dependencies.Notifier = harness.notifier
			dependencies.Counter = nil
		},
	}
	return harness
}

func (harness *testHarness) execute(ctx context.Context, arguments ...string) error {
	rootCommand := createRootCommand(harness.env)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	return rootCommand.ExecuteContext(ctx)
}

func TestDocumentCommandSendsChatPrompt(t *testing.T) {
	harness := newTestHarness(t)
	sourcePath := filepath.Join(harness.workingDir, "math.js")
	if err := os.WriteFile(sourcePath, []byte("function add(a, b) {\n  return a + b;\n}\n"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	err := harness.execute(context.Background(), dispatcher.CommandRunFullJSDoc, "--file", sourcePath, "--selection", "0:0-2:1", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var response bridge.CommandResponse
	if decodeErr := json.Unmarshal([]byte(harness.stdout.String()), &response); decodeErr != nil {
		t.Fatalf("decode response %q: %v", harness.stdout.String(), decodeErr)
	}
	if response.State != dispatcher.StateSuccess.String() || response.Source != "selection" {
		t.Fatalf("unexpected response %+v", response)
	}
	if len(harness.opener.prefills) != 1 {
		t.Fatalf("expected one chat prefill, got %d", len(harness.opener.prefills))
	}
	prefill := harness.opener.prefills[0]
	if !strings.HasPrefix(prefill, "/jsdoc\n\n```") || !strings.Contains(prefill, "return a + b;") {
		t.Fatalf("unexpected prefill %q", prefill)
	}
}

func TestDocumentCommandReadsBufferFromStdin(t *testing.T) {
	harness := newTestHarness(t)
	sourcePath := filepath.Join(harness.workingDir, "Widget.cs")
	if err := os.WriteFile(sourcePath, []byte("class Widget {}\n"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	harness.env.stdin = strings.NewReader("class Widget { void Spin() {} }\n")

	err := harness.execute(context.Background(), dispatcher.CommandCSharpDocText, "--file", sourcePath, "--stdin", "--selection", "0:15-0:29", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(harness.opener.prefills) != 1 || !strings.Contains(harness.opener.prefills[0], "void Spin() {}") {
		t.Fatalf("selection must come from the unsaved buffer: %v", harness.opener.prefills)
	}
}

func TestDocumentCommandWithoutFileReportsFailure(t *testing.T) {
	harness := newTestHarness(t)

	err := harness.execute(context.Background(), dispatcher.CommandJSDocTextOnly, "--json")
	if !errors.Is(err, ErrCommandReported) {
		t.Fatalf("expected ErrCommandReported, got %v", err)
	}
	if !strings.Contains(harness.stdout.String(), `"state": "failed"`) {
		t.Fatalf("expected failed outcome, got %s", harness.stdout.String())
	}
	messages := harness.notifier.Messages()
	if len(messages) != 1 || messages[0].Level != notify.LevelWarning || messages[0].Text != "No active editor." {
		t.Fatalf("unexpected notifications %+v", messages)
	}
	if len(harness.opener.prefills) != 0 {
		t.Fatalf("chat must not open without an editor")
	}
}

func TestCommandsCommandListsRegistry(t *testing.T) {
	harness := newTestHarness(t)
	if err := harness.execute(context.Background(), "commands", "--json"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var listed []dispatcher.Command
	if err := json.Unmarshal([]byte(harness.stdout.String()), &listed); err != nil {
		t.Fatalf("decode commands: %v", err)
	}
	if len(listed) != len(dispatcher.DefaultCommands) {
		t.Fatalf("expected %d commands, got %d", len(dispatcher.DefaultCommands), len(listed))
	}
}

func TestInitCommandWritesLocalConfiguration(t *testing.T) {
	harness := newTestHarness(t)
	if err := harness.execute(context.Background(), "init"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	expectedPath := filepath.Join(harness.workingDir, ".doccomments.yaml")
	if _, statErr := os.Stat(expectedPath); statErr != nil {
		t.Fatalf("expected configuration at %s: %v", expectedPath, statErr)
	}
	if err := harness.execute(context.Background(), "init"); err == nil {
		t.Fatalf("expected an error when the file already exists")
	}
}

func TestServeCommandServesCapabilities(t *testing.T) {
	harness := newTestHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- harness.execute(ctx, "serve", "--address", "127.0.0.1:0")
	}()

	address := waitForBridgeAddress(t, harness.stdout)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+address+"/capabilities", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	client := http.Client{Timeout: 2 * time.Second}
	response, err := client.Do(request)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	defer response.Body.Close()

	var body struct {
		Capabilities []bridge.Capability `json:"capabilities"`
	}
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Capabilities) != len(dispatcher.DefaultCommands) {
		t.Fatalf("expected %d capabilities, got %d", len(dispatcher.DefaultCommands), len(body.Capabilities))
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("server shutdown error: %v", err)
	}
}

func waitForBridgeAddress(t *testing.T, output *synchronizedBuffer) string {
	t.Helper()
	const prefix = "bridge listening on "
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, line := range strings.Split(output.String(), "\n") {
			if strings.HasPrefix(line, prefix) {
				return strings.TrimPrefix(line, prefix)
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server address not reported: %s", output.String())
	return ""
}
