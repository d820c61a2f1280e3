package tokenizer

import (
	"errors"
	"unicode/utf8"
)

// ErrNilCounter is returned when no counter is supplied.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a prompt.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountPrompt estimates tokens for prompt. Text that is not valid UTF-8 is reported as not counted.
func CountPrompt(counter Counter, prompt string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	if !utf8.ValidString(prompt) {
		return CountResult{Counted: false}, nil
	}
	tokens, countError := counter.CountString(prompt)
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
