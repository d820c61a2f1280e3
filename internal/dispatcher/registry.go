package dispatcher

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/temirov/doccomments/internal/prompt"
)

// Kind selects how a command delivers its prompt.
type Kind string

const (
	// KindChat prefills the chat panel with a slash command.
	KindChat Kind = "chat"
	// KindAgent has the external agent edit the file.
	KindAgent Kind = "agent"
)

// Command identifiers.
const (
	CommandRunFullJSDoc     = "run-full-jsdoc-on-selection"
	CommandJSDocTextOnly    = "generate-jsdoc-text-only"
	CommandRunFullCSharpDoc = "run-full-csdoc-on-selection"
	CommandCSharpDocText    = "generate-csdoc-text-only"
	CommandAgentCSharpDoc   = "apply-csdoc-via-agent"
	CommandAgentJSDoc       = "apply-jsdoc-via-agent"
)

const errorDuplicateCommandFormat = "command %s is already registered"

// ErrUnknownCommand is returned for identifiers missing from the registry.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a registered documentation command.
type Command struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Kind         Kind          `json:"kind"`
	SlashCommand string        `json:"slash_command,omitempty"`
	Family       prompt.Family `json:"family"`
}

// DefaultCommands are registered on activation.
var DefaultCommands = []Command{
	{ID: CommandRunFullJSDoc, Title: "Run full JSDoc on selection", Kind: KindChat, SlashCommand: "jsdoc", Family: prompt.FamilyJSDoc},
	{ID: CommandJSDocTextOnly, Title: "Generate JSDoc text only", Kind: KindChat, SlashCommand: "jsdoc_text", Family: prompt.FamilyJSDoc},
	{ID: CommandRunFullCSharpDoc, Title: "Run full C# XML docs on selection", Kind: KindChat, SlashCommand: "csdoc", Family: prompt.FamilyCSharpDoc},
	{ID: CommandCSharpDocText, Title: "Generate C# XML doc text only", Kind: KindChat, SlashCommand: "csdoc_text", Family: prompt.FamilyCSharpDoc},
	{ID: CommandAgentCSharpDoc, Title: "Apply C# XML docs via agent", Kind: KindAgent, Family: prompt.FamilyCSharpDoc},
	{ID: CommandAgentJSDoc, Title: "Apply JSDoc via agent", Kind: KindAgent, Family: prompt.FamilyJSDoc},
}

// Registry holds the active commands. It is the only process-wide mutable state.
type Registry struct {
	mutex    sync.RWMutex
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: map[string]Command{}}
}

// Register adds command; identifiers must be unique.
func (registry *Registry) Register(command Command) error {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if _, exists := registry.commands[command.ID]; exists {
		return fmt.Errorf(errorDuplicateCommandFormat, command.ID)
	}
	registry.commands[command.ID] = command
	return nil
}

// RegisterDefaults registers DefaultCommands, skipping those already present.
func (registry *Registry) RegisterDefaults() {
	for _, command := range DefaultCommands {
		_ = registry.Register(command)
	}
}

// Unregister removes the command and reports whether it was present.
func (registry *Registry) Unregister(commandID string) bool {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	_, exists := registry.commands[commandID]
	delete(registry.commands, commandID)
	return exists
}

// UnregisterAll removes every command.
func (registry *Registry) UnregisterAll() {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.commands = map[string]Command{}
}

// Lookup returns the command registered under commandID.
func (registry *Registry) Lookup(commandID string) (Command, bool) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	command, exists := registry.commands[commandID]
	return command, exists
}

// Commands lists the registered commands sorted by identifier.
func (registry *Registry) Commands() []Command {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	listed := make([]Command, 0, len(registry.commands))
	for _, command := range registry.commands {
		listed = append(listed, command)
	}
	sort.Slice(listed, func(left int, right int) bool {
		return listed[left].ID < listed[right].ID
	})
	return listed
}
