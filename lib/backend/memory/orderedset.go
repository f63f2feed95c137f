package memory

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/watch"
)

func init() {
	backend.Register("set", NewOrderedSet)
}

const orderedSetModes = mode.INCLUSIVE | mode.NO_PREFIX | mode.SUFFIX | mode.IGNORE_KEYS |
	mode.KEEP_LAST | mode.NEW_ONLY | mode.EXIST_ONLY | mode.CONSUME |
	mode.WAIT | mode.NOTIFY | mode.LUA_FILTER | mode.LIB_FILTER

// SetConfig is the JSON configuration accepted by the "set" backend type.
type SetConfig struct {
	ID         string `json:"__id__,omitempty"`
	UseLock    bool   `json:"use_lock"`
	Comparator string `json:"comparator,omitempty"`
	Degree     int    `json:"btree_degree,omitempty"`
}

type setEntry struct {
	key []byte
	cmp *Comparator
}

func (e setEntry) Less(than btree.Item) bool {
	return (*e.cmp)(e.key, than.(setEntry).key) < 0
}

// orderedSet is a key-only backend: it stores membership, not values.
// Put with a non-empty value is rejected, matching the set/map split
// where set backends require a zero value_size.
type orderedSet struct {
	mu      sync.RWMutex
	tree    *btree.BTree
	watcher *watch.Watcher
	cmp     Comparator
	config  SetConfig
	raw     []byte
}

// NewOrderedSet is a backend.Factory for the "set" backend type.
func NewOrderedSet(rawConfig []byte) (backend.Backend, *backend.Error) {
	cfg := SetConfig{Degree: 32}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, backend.NewError(backend.ErrInvalidConfig, "set: %v", err)
		}
	}
	if cfg.Degree <= 0 {
		cfg.Degree = 32
	}
	cmp, ok := lookupComparator(cfg.Comparator)
	if !ok {
		return nil, backend.NewError(backend.ErrInvalidConfig, "set: unknown comparator %q", cfg.Comparator)
	}
	s := &orderedSet{
		tree:    btree.New(cfg.Degree),
		watcher: watch.New(),
		cmp:     cmp,
		config:  cfg,
	}
	s.raw, _ = json.Marshal(cfg)
	return s, nil
}

func (s *orderedSet) newEntry(key []byte) setEntry {
	return setEntry{key: key, cmp: &s.cmp}
}

func (s *orderedSet) Name() string   { return "set" }
func (s *orderedSet) Config() []byte { return s.raw }
func (s *orderedSet) SupportsMode(mo mode.Bits) bool {
	return mo.Supports(orderedSetModes)
}

func (s *orderedSet) Info() backend.Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return backend.Info{Name: "set", Count: uint64(s.tree.Len()), Modes: orderedSetModes}
}

func (s *orderedSet) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear(false)
	return nil
}

func (s *orderedSet) Count(mo mode.Bits) (uint64, *backend.Error) {
	if !s.SupportsMode(mo) {
		return 0, backend.NewError(backend.ErrOpUnsupported, "set: unsupported mode")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.tree.Len()), nil
}

func (s *orderedSet) has(key []byte) bool {
	return s.tree.Get(s.newEntry(key)) != nil
}

func (s *orderedSet) Exists(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	if !s.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "set: unsupported mode")
	}
	flags := make([]bool, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&s.mu, s.watcher, k, mo, timeout, func() bool {
			return s.has(k)
		})
		if err != nil {
			return nil, err
		}
		flags[i] = found
	}
	return flags, nil
}

// Length reports 0 for every present key and mode.KeyNotFound otherwise,
// since a set member carries no value.
func (s *orderedSet) Length(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	if !s.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "set: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&s.mu, s.watcher, k, mo, timeout, func() bool {
			return s.has(k)
		})
		if err != nil {
			return nil, err
		}
		if !found {
			sizes[i] = mode.KeyNotFound
		}
	}
	return sizes, nil
}

func (s *orderedSet) Put(mo mode.Bits, keys, values [][]byte) *backend.Error {
	if !s.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "set: unsupported mode")
	}
	if len(keys) != len(values) {
		return backend.NewError(backend.ErrInvalidArgs, "keys/values length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var toNotify []string
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		if len(values[i]) != 0 {
			return backend.NewError(backend.ErrInvalidArgs, "set backend requires zero-length value at index %d", i)
		}
		found := s.has(k)
		if mo.Has(mode.NEW_ONLY) && found {
			return backend.NewError(backend.ErrKeyExists, "key exists at index %d", i)
		}
		if mo.Has(mode.EXIST_ONLY) && !found {
			return backend.NewError(backend.ErrKeyNotFound, "key not found at index %d", i)
		}
		s.tree.ReplaceOrInsert(s.newEntry(append([]byte(nil), k...)))
		if mo.Has(mode.NOTIFY) {
			toNotify = append(toNotify, string(k))
		}
	}
	for _, k := range toNotify {
		s.watcher.Notify(k)
	}
	return nil
}

// Get reports a zero-length value for present keys, since a set member
// carries no value; it never touches sink capacity beyond a zero write.
func (s *orderedSet) Get(mo mode.Bits, keys [][]byte, sink backend.Sink, timeout time.Duration) ([]uint64, *backend.Error) {
	if !s.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "set: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&s.mu, s.watcher, k, mo, timeout, func() bool {
			return s.has(k)
		})
		if err != nil {
			return nil, err
		}
		if !found {
			sizes[i] = mode.KeyNotFound
			continue
		}
		sizes[i] = backend.WriteToSink(sink, i, nil)
		if mo.Has(mode.CONSUME) {
			s.mu.Lock()
			s.tree.Delete(s.newEntry(k))
			s.mu.Unlock()
		}
	}
	return sizes, nil
}

func (s *orderedSet) Erase(mo mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	if !s.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "set: unsupported mode")
	}
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		if _, err := waitForKey(&s.mu, s.watcher, k, mo, timeout, func() bool {
			return s.has(k)
		}); err != nil {
			return err
		}
		s.mu.Lock()
		s.tree.Delete(s.newEntry(k))
		s.mu.Unlock()
	}
	return nil
}

func (s *orderedSet) ListKeys(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink backend.Sink, maxRecords int) ([]uint64, *backend.Error) {
	if !s.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "set: unsupported mode")
	}
	if maxRecords <= 0 {
		return nil, backend.NewError(backend.ErrInvalidArgs, "maxRecords must be positive")
	}

	s.mu.RLock()
	var matches [][]byte
	visit := func(it btree.Item) bool {
		e := it.(setEntry)
		if len(fromKey) > 0 && !mo.Has(mode.INCLUSIVE) && s.cmp(e.key, fromKey) == 0 {
			return true
		}
		if !filter.Check(e.key, nil) {
			return !filter.ShouldStop(e.key)
		}
		matches = append(matches, e.key)
		return len(matches) < maxRecords
	}
	if len(fromKey) == 0 {
		s.tree.Ascend(visit)
	} else {
		s.tree.AscendGreaterOrEqual(s.newEntry(fromKey), visit)
	}
	s.mu.RUnlock()

	ksizes := make([]uint64, maxRecords)
	for i := 0; i < maxRecords; i++ {
		if i >= len(matches) {
			ksizes[i] = mode.NoMoreKeys
			continue
		}
		isLast := i == len(matches)-1
		emit, elide := mode.KeyCopy(mo, matches[i], len(filter.Bytes), isLast)
		if elide {
			ksizes[i] = 0
		} else {
			ksizes[i] = backend.WriteToSink(keySink, i, emit)
		}
	}
	return ksizes, nil
}

// ListKeyValues is unsupported on a set: there are no values to list.
func (s *orderedSet) ListKeyValues(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	return nil, nil, backend.NewError(backend.ErrOpUnsupported, "set: ListKeyValues has no values to report")
}
