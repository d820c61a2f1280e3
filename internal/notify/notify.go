// Package notify delivers user-visible messages and the diagnostic output channel.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Level is the severity of a user-visible message.
type Level string

const (
	// LevelInfo is an informational message.
	LevelInfo Level = "info"
	// LevelWarning reports a condition the user can fix.
	LevelWarning Level = "warning"
	// LevelError reports a failure.
	LevelError Level = "error"
)

// Notifier shows messages to the user.
type Notifier interface {
	Info(message string)
	Warn(message string)
	Error(message string)
}

// LoggerNotifier shows messages through a zap logger.
type LoggerNotifier struct {
	logger *zap.Logger
}

// NewLoggerNotifier wraps logger. A nil logger discards messages.
func NewLoggerNotifier(logger *zap.Logger) *LoggerNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerNotifier{logger: logger}
}

// Info logs at info level.
func (notifier *LoggerNotifier) Info(message string) {
	notifier.logger.Info(message)
}

// Warn logs at warn level.
func (notifier *LoggerNotifier) Warn(message string) {
	notifier.logger.Warn(message)
}

// Error logs at error level.
func (notifier *LoggerNotifier) Error(message string) {
	notifier.logger.Error(message)
}

// Message is one recorded notification.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Recorder keeps notifications in memory, e.g. to return them in a bridge response.
type Recorder struct {
	mutex    sync.Mutex
	messages []Message
}

// Info records an info message.
func (recorder *Recorder) Info(message string) {
	recorder.record(LevelInfo, message)
}

// Warn records a warning.
func (recorder *Recorder) Warn(message string) {
	recorder.record(LevelWarning, message)
}

// Error records an error.
func (recorder *Recorder) Error(message string) {
	recorder.record(LevelError, message)
}

// Messages returns a copy of the recorded messages in order.
func (recorder *Recorder) Messages() []Message {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]Message(nil), recorder.messages...)
}

func (recorder *Recorder) record(level Level, text string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.messages = append(recorder.messages, Message{Level: level, Text: text})
}

var (
	_ Notifier = (*LoggerNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
)
