package dispatcher

import "sync"

// fileGuard prevents overlapping agent runs on the same file.
type fileGuard struct {
	mutex  sync.Mutex
	active map[string]struct{}
}

func newFileGuard() *fileGuard {
	return &fileGuard{active: map[string]struct{}{}}
}

// acquire reserves path and returns its release function; false means a run already holds it.
func (guard *fileGuard) acquire(path string) (func(), bool) {
	guard.mutex.Lock()
	defer guard.mutex.Unlock()
	if _, busy := guard.active[path]; busy {
		return nil, false
	}
	guard.active[path] = struct{}{}
	return func() {
		guard.mutex.Lock()
		defer guard.mutex.Unlock()
		delete(guard.active, path)
	}, true
}
