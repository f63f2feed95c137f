package memory

import (
	"sync"
	"time"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/watch"
)

// waitForKey blocks the caller until check reports true, or, when m
// carries WAIT, until the watcher notifies key and check is retried, or
// timeout elapses. check is always invoked while rw's read lock is held.
//
// The watcher registration happens before rw's read lock is released
// (watch.Watcher.Add takes its own internal lock, so this is safe to call
// while still holding rw), which is what makes a concurrent writer's
// exclusive lock plus Notify unable to race past a waiter that has not yet
// registered.
func waitForKey(rw *sync.RWMutex, w *watch.Watcher, key []byte, m mode.Bits, timeout time.Duration, check func() bool) (found bool, err *backend.Error) {
	for {
		rw.RLock()
		if check() {
			rw.RUnlock()
			return true, nil
		}
		if !m.Has(mode.WAIT) {
			rw.RUnlock()
			return false, nil
		}
		ch := w.Add(string(key))
		rw.RUnlock()
		if !watch.Wait(ch, timeout) {
			return false, backend.NewError(backend.ErrTimeout, "timed out waiting for key %q", key)
		}
	}
}
