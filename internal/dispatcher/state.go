package dispatcher

// State is a step of a command run.
type State int

const (
	// StateIdle is the state before any work.
	StateIdle State = iota
	// StateResolving looks up the target.
	StateResolving
	// StateSending opens the chat with the prompt.
	StateSending
	// StateInvoking runs the external agent.
	StateInvoking
	// StateSuccess is terminal: the command did its work.
	StateSuccess
	// StateFallback is terminal: the prompt is on the clipboard and the user pastes it.
	StateFallback
	// StateFailed is terminal: a single message explains why.
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateResolving: "resolving",
	StateSending:   "sending",
	StateInvoking:  "invoking",
	StateSuccess:   "success",
	StateFallback:  "fallback",
	StateFailed:    "failed",
}

// String returns the lower-case state name.
func (state State) String() string {
	if name, known := stateNames[state]; known {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition follows state.
func (state State) Terminal() bool {
	return state == StateSuccess || state == StateFallback || state == StateFailed
}
