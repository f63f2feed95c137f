// Package watch implements the key-watcher primitive that lets a reader
// block until a specific key is inserted into a backend.
//
// A Watcher is a multimap from key to a queue of waiting goroutines. The
// contract requires that registering a waiter be
// observable to a concurrent writer before the caller releases whatever
// lock it holds on the underlying backend, so that a writer that acquires
// the write lock after the reader released it cannot miss the
// notification. Watcher achieves this with its own internal mutex: Add
// registers the waiter and returns a channel; the caller is then free to
// release the backend lock and block on that channel without holding
// either lock.
package watch
