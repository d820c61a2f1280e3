package bridge

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/temirov/doccomments/internal/dispatcher"
	"github.com/temirov/doccomments/internal/editor"
	"github.com/temirov/doccomments/internal/symbols"
)

const (
	errorDecodePayloadFormat = "decode payload: %w"
	errorOpenDocumentFormat  = "open document: %w"
)

// Capability describes a command exposed by the bridge.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// CommandPayload is the editor context posted by a client.
type CommandPayload struct {
	File          string           `json:"file"`
	LanguageID    string           `json:"language_id,omitempty"`
	Cursor        symbols.Position `json:"cursor"`
	Selection     *symbols.Span    `json:"selection,omitempty"`
	SelectionText string           `json:"selection_text,omitempty"`
	// Buffer is the unsaved editor text; omit it when the editor matches the file on disk.
	Buffer    *string `json:"buffer,omitempty"`
	Workspace string  `json:"workspace,omitempty"`
}

// CommandResponse is the outcome of a command run.
type CommandResponse struct {
	Command string   `json:"command"`
	State   string   `json:"state"`
	Trace   []string `json:"trace"`
	Level   string   `json:"level,omitempty"`
	Message string   `json:"message,omitempty"`
	Prompt  string   `json:"prompt,omitempty"`
	Source  string   `json:"source,omitempty"`
	Changed bool     `json:"changed"`
	Summary string   `json:"summary,omitempty"`
	Diff    string   `json:"diff,omitempty"`
}

// Capabilities describes commands in registry order.
func Capabilities(commands []dispatcher.Command) []Capability {
	capabilities := make([]Capability, 0, len(commands))
	for _, command := range commands {
		capabilities = append(capabilities, Capability{Name: command.ID, Description: command.Title, Kind: string(command.Kind)})
	}
	return capabilities
}

// decodePayload reads one payload. An empty body is an empty payload: no active editor.
func decodePayload(body io.Reader) (CommandPayload, error) {
	var payload CommandPayload
	raw, readError := io.ReadAll(body)
	if readError != nil {
		return CommandPayload{}, fmt.Errorf(errorReadPayloadFormat, readError)
	}
	if len(raw) == 0 {
		return payload, nil
	}
	if decodeError := json.Unmarshal(raw, &payload); decodeError != nil {
		return CommandPayload{}, fmt.Errorf(errorDecodePayloadFormat, decodeError)
	}
	return payload, nil
}

// Request opens the document unless no file was given, which is the "no active editor" case.
func (payload CommandPayload) Request() (dispatcher.Request, error) {
	state := editor.State{Cursor: payload.Cursor, Selection: editor.Selection{Text: payload.SelectionText}}
	if payload.Selection != nil {
		state.Selection.Span = *payload.Selection
	}
	if payload.File != "" {
		options := editor.OpenOptions{Path: payload.File, LanguageID: payload.LanguageID}
		if payload.Buffer != nil {
			options.Buffer = []byte(*payload.Buffer)
		}
		document, openError := editor.Open(options)
		if openError != nil {
			return dispatcher.Request{}, fmt.Errorf(errorOpenDocumentFormat, openError)
		}
		state.Document = document
	}
	return dispatcher.Request{Editor: state, Workspace: payload.Workspace}, nil
}

// ResponseFromOutcome converts a dispatcher outcome into its wire form.
func ResponseFromOutcome(outcome dispatcher.Outcome) CommandResponse {
	trace := make([]string, 0, len(outcome.Trace))
	for _, state := range outcome.Trace {
		trace = append(trace, state.String())
	}
	response := CommandResponse{
		Command: outcome.CommandID,
		State:   outcome.State.String(),
		Trace:   trace,
		Level:   string(outcome.Level),
		Message: outcome.Message,
		Prompt:  outcome.Prompt,
		Source:  string(outcome.Source),
		Changed: outcome.Changes.Changed,
	}
	if outcome.Changes.Changed {
		response.Summary = outcome.Changes.Summary()
		response.Diff = outcome.Changes.Unified
	}
	return response
}
