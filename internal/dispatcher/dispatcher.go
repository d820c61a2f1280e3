// Package dispatcher runs documentation commands: it resolves the target, then prefills the chat
// (falling back to the clipboard) or drives the agent, and reports one user-visible outcome per run.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/doccomments/internal/changes"
	"github.com/temirov/doccomments/internal/editor"
	"github.com/temirov/doccomments/internal/notify"
	"github.com/temirov/doccomments/internal/prompt"
	"github.com/temirov/doccomments/internal/services/agent"
	"github.com/temirov/doccomments/internal/services/chat"
	"github.com/temirov/doccomments/internal/services/clipboard"
	"github.com/temirov/doccomments/internal/target"
	"github.com/temirov/doccomments/internal/tokenizer"
	"github.com/temirov/doccomments/internal/utils"
)

const (
	messageNoActiveEditor = "No active editor."
	messageNoTarget       = "No selection, and no enclosing function/method symbol was found at the cursor."
	messageChatSentFormat = "Sent /%s with the %s to chat."
	messageFallbackFormat = "Copied /%s + %s to clipboard. Paste into the chat and press Enter."
	messageUnsavedFormat  = "Save %s before running the agent."
	messageBusyFormat     = "The agent is already documenting %s."
	messageNotFoundFormat = "Codex CLI not found: %s. %s"
	messageProbeFormat    = "Codex CLI is not working: %s. %s"
	messageNoChangeFormat = "Codex ran but did not modify %s. See the output channel for its output."
	messageChangedFormat  = "Codex documented the %s in %s (%s)."
	messageFailureFormat  = "Documentation command failed: %s"

	channelTokensFormat      = "[%s] prompt tokens (%s): %d"
	channelChatErrorFormat   = "[%s] chat prefill failed: %s"
	channelReopenErrorFormat = "[%s] opening chat without prefill failed: %s"
	channelCleanupFormat     = "[%s] %v"
	channelAgentFormat       = "[%s] %s %s"
	channelNoChangeFormat    = "[%s] agent finished without modifying %s"
	channelDiffErrorFormat   = "[%s] %v"
	channelStdoutHeader      = "--- stdout ---"
	channelStderrHeader      = "--- stderr ---"

	slashPrefix = "/"
)

var (
	// ErrNoActiveEditor is reported when no document was supplied.
	ErrNoActiveEditor = errors.New("no active editor")
	// ErrNoTarget is reported when neither a selection nor an enclosing callable exists.
	ErrNoTarget = errors.New("no selection and no enclosing callable symbol")
	// ErrUnsavedFile is reported when the agent would edit a file whose editor text is not on disk.
	ErrUnsavedFile = errors.New("document has unsaved changes")
	// ErrAgentBusy is reported when another agent run holds the same file.
	ErrAgentBusy = errors.New("an agent run is already in progress for this file")
)

// TargetResolver resolves the unit of work from editor state.
type TargetResolver interface {
	Resolve(ctx context.Context, state editor.State) (target.Target, bool, error)
	NeedsContext(languageID string) bool
}

// Agent locates, probes and runs the external documentation agent.
type Agent interface {
	Locate() (string, error)
	Probe(ctx context.Context, executable string) (string, error)
	Run(ctx context.Context, executable string, invocation agent.Invocation) (agent.Result, error)
}

// Dependencies are the collaborators of a Dispatcher. Resolver, Chat, Clipboard and Agent are required
// for the commands that use them; the rest have defaults.
type Dependencies struct {
	Resolver  TargetResolver
	Chat      chat.Opener
	Clipboard clipboard.Writer
	Agent     Agent
	Notifier  notify.Notifier
	Channel   notify.Channel
	Counter   tokenizer.Counter
	Now       func() time.Time
}

// Request carries the editor context of one invocation.
type Request struct {
	Editor editor.State
	// Workspace overrides the workspace root; empty derives it from the document path.
	Workspace string
}

// Outcome is the result of one run.
type Outcome struct {
	CommandID string
	State     State
	Trace     []State
	Level     notify.Level
	Message   string
	Prompt    string
	Source    target.Source
	Changes   changes.Report
	Err       error
}

// Dispatcher runs registered commands.
type Dispatcher struct {
	registry     *Registry
	dependencies Dependencies
	guard        *fileGuard
}

// New constructs a Dispatcher over registry.
func New(registry *Registry, dependencies Dependencies) *Dispatcher {
	normalized := dependencies
	if normalized.Notifier == nil {
		normalized.Notifier = notify.NewLoggerNotifier(nil)
	}
	if normalized.Channel == nil {
		normalized.Channel = notify.NewWriterChannel(nil)
	}
	if normalized.Now == nil {
		normalized.Now = time.Now
	}
	return &Dispatcher{registry: registry, dependencies: normalized, guard: newFileGuard()}
}

// Registry returns the command registry.
func (dispatcher *Dispatcher) Registry() *Registry {
	return dispatcher.registry
}

// Dispatch runs commandID. The error is non-nil only for unregistered commands; every other
// failure is described by the returned Outcome and has already been shown to the user.
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, commandID string, request Request) (Outcome, error) {
	command, found := dispatcher.registry.Lookup(commandID)
	if !found {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownCommand, commandID)
	}

	progress := newRun(commandID)
	dispatcher.execute(ctx, command, request, progress)
	dispatcher.report(progress.outcome)
	recordOutcome(progress.outcome)
	return progress.outcome, nil
}

func (dispatcher *Dispatcher) execute(ctx context.Context, command Command, request Request, progress *run) {
	defer func() {
		if recovered := recover(); recovered != nil {
			progress.fail(recoveredError(recovered))
		}
	}()
	if command.Kind == KindAgent {
		dispatcher.runAgent(ctx, command, request, progress)
		return
	}
	dispatcher.runChat(ctx, command, request, progress)
}

func (dispatcher *Dispatcher) resolve(ctx context.Context, request Request, progress *run) (target.Target, bool) {
	if request.Editor.Document == nil {
		progress.finish(StateFailed, notify.LevelWarning, messageNoActiveEditor, ErrNoActiveEditor)
		return target.Target{}, false
	}

	progress.enter(StateResolving)
	resolved, found, resolveError := dispatcher.dependencies.Resolver.Resolve(ctx, request.Editor)
	if resolveError != nil {
		progress.fail(resolveError)
		return target.Target{}, false
	}
	if !found {
		progress.finish(StateFailed, notify.LevelWarning, messageNoTarget, ErrNoTarget)
		return target.Target{}, false
	}
	progress.outcome.Source = resolved.Source
	return resolved, true
}

func (dispatcher *Dispatcher) runChat(ctx context.Context, command Command, request Request, progress *run) {
	resolved, found := dispatcher.resolve(ctx, request, progress)
	if !found {
		return
	}

	progress.enter(StateSending)
	slashName := strings.TrimPrefix(command.SlashCommand, slashPrefix)
	chatPrompt := prompt.ChatPrompt(slashName, resolved, dispatcher.dependencies.Resolver.NeedsContext(resolved.LanguageID))
	progress.outcome.Prompt = chatPrompt
	dispatcher.appendTokenEstimate(command.ID, chatPrompt)

	openError := dispatcher.dependencies.Chat.Open(ctx, chatPrompt)
	if openError == nil {
		progress.finish(StateSuccess, notify.LevelInfo, fmt.Sprintf(messageChatSentFormat, slashName, resolved.Describe()), nil)
		return
	}
	dispatcher.dependencies.Channel.AppendLine(fmt.Sprintf(channelChatErrorFormat, command.ID, DiagnosticText(openError)))

	if clipboardError := dispatcher.dependencies.Clipboard.WriteText(ctx, chatPrompt); clipboardError != nil {
		progress.fail(clipboardError)
		return
	}
	if reopenError := dispatcher.dependencies.Chat.Open(ctx, ""); reopenError != nil {
		dispatcher.dependencies.Channel.AppendLine(fmt.Sprintf(channelReopenErrorFormat, command.ID, DiagnosticText(reopenError)))
	}
	chatFallbacksTotal.Inc()
	progress.finish(StateFallback, notify.LevelInfo, fmt.Sprintf(messageFallbackFormat, slashName, resolved.Describe()), nil)
}

func (dispatcher *Dispatcher) runAgent(ctx context.Context, command Command, request Request, progress *run) {
	resolved, found := dispatcher.resolve(ctx, request, progress)
	if !found {
		return
	}
	document := request.Editor.Document
	fileName := filepath.Base(document.Path)

	progress.enter(StateInvoking)
	release, acquired := dispatcher.guard.acquire(document.Path)
	if !acquired {
		progress.finish(StateFailed, notify.LevelWarning, fmt.Sprintf(messageBusyFormat, fileName), ErrAgentBusy)
		return
	}
	defer release()

	agentRunner := dispatcher.dependencies.Agent
	executable, locateError := agentRunner.Locate()
	if locateError != nil {
		progress.finish(StateFailed, notify.LevelError, fmt.Sprintf(messageNotFoundFormat, DiagnosticText(locateError), agent.InstallHint), locateError)
		return
	}
	version, probeError := agentRunner.Probe(ctx, executable)
	if probeError != nil {
		progress.finish(StateFailed, notify.LevelError, fmt.Sprintf(messageProbeFormat, DiagnosticText(probeError), agent.InstallHint), probeError)
		return
	}
	if !document.Persisted {
		progress.finish(StateFailed, notify.LevelWarning, fmt.Sprintf(messageUnsavedFormat, fileName), ErrUnsavedFile)
		return
	}

	workspace, workspaceError := utils.ResolveWorkspaceRoot(document.Path, request.Workspace)
	if workspaceError != nil {
		progress.fail(workspaceError)
		return
	}
	rules := prompt.RulesFor(resolved.LanguageID, command.Family)
	instructions := prompt.AgentInstructions(document.Path, resolved, rules)
	instructionFile, writeError := agent.WriteInstructionFile(workspace, instructions, dispatcher.dependencies.Now())
	if writeError != nil {
		progress.fail(writeError)
		return
	}
	defer func() {
		if removeError := instructionFile.Remove(); removeError != nil {
			dispatcher.dependencies.Channel.AppendLine(fmt.Sprintf(channelCleanupFormat, command.ID, removeError))
		}
	}()

	before, beforeError := changes.Take(document.Path)
	if beforeError != nil {
		progress.fail(beforeError)
		return
	}

	agentPrompt := prompt.AgentPrompt(instructionFile.Path)
	progress.outcome.Prompt = agentPrompt
	dispatcher.appendTokenEstimate(command.ID, instructions)
	dispatcher.dependencies.Channel.AppendLine(fmt.Sprintf(channelAgentFormat, command.ID, executable, version))

	startedAt := dispatcher.dependencies.Now()
	result, runError := agentRunner.Run(ctx, executable, agent.Invocation{Workspace: workspace, Prompt: agentPrompt})
	agentRunDuration.WithLabelValues(command.ID).Observe(dispatcher.dependencies.Now().Sub(startedAt).Seconds())
	if runError != nil {
		var executionError *agent.ExecutionError
		if errors.As(runError, &executionError) {
			dispatcher.appendAgentOutput(executionError.Stdout, executionError.Stderr)
		}
		progress.fail(runError)
		return
	}

	after, afterError := changes.Take(document.Path)
	if afterError != nil {
		progress.fail(afterError)
		return
	}
	report, compareError := changes.Compare(before, after)
	if compareError != nil {
		dispatcher.dependencies.Channel.AppendLine(fmt.Sprintf(channelDiffErrorFormat, command.ID, compareError))
	}
	progress.outcome.Changes = report

	if !report.Changed {
		dispatcher.dependencies.Channel.AppendLine(fmt.Sprintf(channelNoChangeFormat, command.ID, document.Path))
		dispatcher.appendAgentOutput(result.Stdout, result.Stderr)
		progress.finish(StateSuccess, notify.LevelWarning, fmt.Sprintf(messageNoChangeFormat, fileName), nil)
		return
	}
	dispatcher.dependencies.Channel.AppendLine(report.Unified)
	progress.finish(StateSuccess, notify.LevelInfo, fmt.Sprintf(messageChangedFormat, resolved.Describe(), fileName, report.Summary()), nil)
}

func (dispatcher *Dispatcher) appendTokenEstimate(commandID string, text string) {
	if dispatcher.dependencies.Counter == nil {
		return
	}
	result, countError := tokenizer.CountPrompt(dispatcher.dependencies.Counter, text)
	if countError != nil || !result.Counted {
		return
	}
	dispatcher.dependencies.Channel.AppendLine(fmt.Sprintf(channelTokensFormat, commandID, dispatcher.dependencies.Counter.Name(), result.Tokens))
}

func (dispatcher *Dispatcher) appendAgentOutput(stdout string, stderr string) {
	channel := dispatcher.dependencies.Channel
	channel.AppendLine(channelStdoutHeader)
	channel.AppendLine(stdout)
	channel.AppendLine(channelStderrHeader)
	channel.AppendLine(stderr)
}

func (dispatcher *Dispatcher) report(outcome Outcome) {
	if outcome.Message == "" {
		return
	}
	notifier := dispatcher.dependencies.Notifier
	switch outcome.Level {
	case notify.LevelError:
		notifier.Error(outcome.Message)
	case notify.LevelWarning:
		notifier.Warn(outcome.Message)
	default:
		notifier.Info(outcome.Message)
	}
}

// DiagnosticText picks the most useful description of err: the agent's stderr, else the error message.
func DiagnosticText(err error) string {
	if err == nil {
		return ""
	}
	var executionError *agent.ExecutionError
	if errors.As(err, &executionError) {
		if stderr := strings.TrimSpace(executionError.Stderr); stderr != "" {
			return stderr
		}
	}
	if message := strings.TrimSpace(err.Error()); message != "" {
		return message
	}
	return fmt.Sprintf("%T", err)
}

// panicValue carries a recovered non-error panic value.
type panicValue struct {
	value any
}

func (recovered panicValue) Error() string {
	return fmt.Sprint(recovered.value)
}

func recoveredError(recovered any) error {
	if recoveredErr, isError := recovered.(error); isError {
		return recoveredErr
	}
	return panicValue{value: recovered}
}

// run accumulates the outcome while a command moves through its states.
type run struct {
	outcome Outcome
}

func newRun(commandID string) *run {
	return &run{outcome: Outcome{CommandID: commandID, State: StateIdle, Trace: []State{StateIdle}}}
}

func (progress *run) enter(state State) {
	progress.outcome.State = state
	progress.outcome.Trace = append(progress.outcome.Trace, state)
}

func (progress *run) finish(state State, level notify.Level, message string, err error) {
	progress.enter(state)
	progress.outcome.Level = level
	progress.outcome.Message = message
	progress.outcome.Err = err
}

func (progress *run) fail(err error) {
	progress.finish(StateFailed, notify.LevelError, fmt.Sprintf(messageFailureFormat, DiagnosticText(err)), err)
}
