package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const (
	channelFileMode        = 0o644
	errorOpenChannelFormat = "open output channel %s: %w"
	lineTerminator         = "\n"
)

// Channel is a line-oriented diagnostic log.
type Channel interface {
	AppendLine(line string)
}

// WriterChannel appends lines to an io.Writer. Write failures are dropped.
type WriterChannel struct {
	mutex  sync.Mutex
	writer io.Writer
}

// NewWriterChannel constructs a Channel writing to writer.
func NewWriterChannel(writer io.Writer) *WriterChannel {
	if writer == nil {
		writer = io.Discard
	}
	return &WriterChannel{writer: writer}
}

// OpenFileChannel appends to the file at path, creating it when missing.
func OpenFileChannel(path string) (*WriterChannel, io.Closer, error) {
	// #nosec G304
	file, openError := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, channelFileMode)
	if openError != nil {
		return nil, nil, fmt.Errorf(errorOpenChannelFormat, path, openError)
	}
	return NewWriterChannel(file), file, nil
}

// AppendLine writes line followed by a newline; multi-line input is written as is.
func (channel *WriterChannel) AppendLine(line string) {
	channel.mutex.Lock()
	defer channel.mutex.Unlock()
	_, _ = io.WriteString(channel.writer, strings.TrimRight(line, lineTerminator)+lineTerminator)
}

// LineRecorder keeps channel lines in memory.
type LineRecorder struct {
	mutex sync.Mutex
	lines []string
}

// AppendLine records line.
func (recorder *LineRecorder) AppendLine(line string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.lines = append(recorder.lines, line)
}

// Lines returns a copy of the recorded lines.
func (recorder *LineRecorder) Lines() []string {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]string(nil), recorder.lines...)
}

// Text joins the recorded lines.
func (recorder *LineRecorder) Text() string {
	return strings.Join(recorder.Lines(), lineTerminator)
}

var (
	_ Channel = (*WriterChannel)(nil)
	_ Channel = (*LineRecorder)(nil)
)
