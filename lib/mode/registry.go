package mode

import "sync"

// Registry populated at startup with named predicates for LUA_FILTER and
// LIB_FILTER. This replaces dlopen/dlsym native-filter loading and an
// embedded Lua interpreter with an explicit registration API: the host
// process registers whatever predicates it needs before opening any
// database, and a filter blob is simply the registered name to look up.
var (
	registryMu sync.RWMutex
	registry   = map[string]PredicateFunc{}
)

// Register adds a named predicate to the process-wide registry. Re-
// registering a name replaces the previous predicate.
func Register(name string, fn PredicateFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// Lookup returns the predicate registered under name, if any.
func Lookup(name string) (PredicateFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	return fn, ok
}

// Unregister removes a predicate from the registry, if present.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}
