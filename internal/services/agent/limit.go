package agent

import (
	"bytes"
	"sync"
)

// limitedBuffer keeps at most limit bytes and keeps accepting writes afterwards so the child
// never blocks on a full pipe. onExceed runs once, on the first overflowing write.
type limitedBuffer struct {
	mutex    sync.Mutex
	buffer   bytes.Buffer
	limit    int64
	exceeded bool
	onExceed func()
}

func newLimitedBuffer(limit int64, onExceed func()) *limitedBuffer {
	return &limitedBuffer{limit: limit, onExceed: onExceed}
}

func (limited *limitedBuffer) Write(data []byte) (int, error) {
	limited.mutex.Lock()
	defer limited.mutex.Unlock()
	if limited.exceeded {
		return len(data), nil
	}
	remaining := limited.limit - int64(limited.buffer.Len())
	if int64(len(data)) > remaining {
		if remaining > 0 {
			limited.buffer.Write(data[:remaining])
		}
		limited.exceeded = true
		if limited.onExceed != nil {
			limited.onExceed()
		}
		return len(data), nil
	}
	limited.buffer.Write(data)
	return len(data), nil
}

func (limited *limitedBuffer) String() string {
	limited.mutex.Lock()
	defer limited.mutex.Unlock()
	return limited.buffer.String()
}

func (limited *limitedBuffer) Exceeded() bool {
	limited.mutex.Lock()
	defer limited.mutex.Unlock()
	return limited.exceeded
}
