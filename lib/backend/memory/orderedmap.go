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
	backend.Register("map", NewOrderedMap)
}

// orderedMapModes lists every mode bit the ordered map backend honors.
const orderedMapModes = mode.INCLUSIVE | mode.NO_PREFIX | mode.SUFFIX | mode.IGNORE_KEYS |
	mode.KEEP_LAST | mode.NEW_ONLY | mode.EXIST_ONLY | mode.APPEND | mode.CONSUME |
	mode.WAIT | mode.NOTIFY | mode.LUA_FILTER | mode.LIB_FILTER

// MapConfig is the JSON configuration accepted by the "map" backend type.
type MapConfig struct {
	ID         string `json:"__id__,omitempty"`
	UseLock    bool   `json:"use_lock"`
	Comparator string `json:"comparator,omitempty"`
	Degree     int    `json:"btree_degree,omitempty"`
}

type mapEntry struct {
	key   []byte
	value []byte
	cmp   *Comparator
}

func (e mapEntry) Less(than btree.Item) bool {
	return (*e.cmp)(e.key, than.(mapEntry).key) < 0
}

// orderedMap is an ordered key/value backend built on a google/btree
// BTree, guarded by a single RWMutex. It plays the same structural role
// as a sharded in-memory engine keyed by a single map, minus
// TTL/expiration, with the batched, mode-driven operation surface of
// backend.Backend in place of single-key get/put/delete methods.
type orderedMap struct {
	mu      sync.RWMutex
	tree    *btree.BTree
	watcher *watch.Watcher
	cmp     Comparator
	config  MapConfig
	raw     []byte
}

// NewOrderedMap is a backend.Factory for the "map" backend type.
func NewOrderedMap(rawConfig []byte) (backend.Backend, *backend.Error) {
	cfg := MapConfig{Degree: 32}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, backend.NewError(backend.ErrInvalidConfig, "map: %v", err)
		}
	}
	if cfg.Degree <= 0 {
		cfg.Degree = 32
	}
	cmp, ok := lookupComparator(cfg.Comparator)
	if !ok {
		return nil, backend.NewError(backend.ErrInvalidConfig, "map: unknown comparator %q", cfg.Comparator)
	}
	m := &orderedMap{
		tree:    btree.New(cfg.Degree),
		watcher: watch.New(),
		cmp:     cmp,
		config:  cfg,
	}
	m.raw, _ = json.Marshal(cfg)
	return m, nil
}

func (m *orderedMap) newEntry(key, value []byte) mapEntry {
	return mapEntry{key: key, value: value, cmp: &m.cmp}
}

func (m *orderedMap) Name() string    { return "map" }
func (m *orderedMap) Config() []byte  { return m.raw }
func (m *orderedMap) SupportsMode(mo mode.Bits) bool {
	return mo.Supports(orderedMapModes)
}

func (m *orderedMap) Info() backend.Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return backend.Info{Name: "map", Count: uint64(m.tree.Len()), Modes: orderedMapModes}
}

func (m *orderedMap) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Clear(false)
	return nil
}

func (m *orderedMap) Count(mo mode.Bits) (uint64, *backend.Error) {
	if !m.SupportsMode(mo) {
		return 0, backend.NewError(backend.ErrOpUnsupported, "map: unsupported mode")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(m.tree.Len()), nil
}

func (m *orderedMap) lookup(key []byte) (mapEntry, bool) {
	item := m.tree.Get(m.newEntry(key, nil))
	if item == nil {
		return mapEntry{}, false
	}
	return item.(mapEntry), true
}

func (m *orderedMap) Exists(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	if !m.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "map: unsupported mode")
	}
	flags := make([]bool, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&m.mu, m.watcher, k, mo, timeout, func() bool {
			_, ok := m.lookup(k)
			return ok
		})
		if err != nil {
			return nil, err
		}
		flags[i] = found
	}
	return flags, nil
}

func (m *orderedMap) Length(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	if !m.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "map: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		var length int
		found, err := waitForKey(&m.mu, m.watcher, k, mo, timeout, func() bool {
			e, ok := m.lookup(k)
			if ok {
				length = len(e.value)
			}
			return ok
		})
		if err != nil {
			return nil, err
		}
		if !found {
			sizes[i] = mode.KeyNotFound
		} else {
			sizes[i] = uint64(length)
		}
	}
	return sizes, nil
}

func (m *orderedMap) Put(mo mode.Bits, keys, values [][]byte) *backend.Error {
	if !m.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "map: unsupported mode")
	}
	if len(keys) != len(values) {
		return backend.NewError(backend.ErrInvalidArgs, "keys/values length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var toNotify []string
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		existing, found := m.lookup(k)
		if mo.Has(mode.NEW_ONLY) && found {
			return backend.NewError(backend.ErrKeyExists, "key exists at index %d", i)
		}
		if mo.Has(mode.EXIST_ONLY) && !found {
			return backend.NewError(backend.ErrKeyNotFound, "key not found at index %d", i)
		}
		val := values[i]
		if mo.Has(mode.APPEND) && found {
			combined := make([]byte, 0, len(existing.value)+len(val))
			combined = append(combined, existing.value...)
			combined = append(combined, val...)
			val = combined
		} else {
			val = append([]byte(nil), val...)
		}
		m.tree.ReplaceOrInsert(m.newEntry(append([]byte(nil), k...), val))
		if mo.Has(mode.NOTIFY) {
			toNotify = append(toNotify, string(k))
		}
	}
	for _, k := range toNotify {
		m.watcher.Notify(k)
	}
	return nil
}

func (m *orderedMap) Get(mo mode.Bits, keys [][]byte, sink backend.Sink, timeout time.Duration) ([]uint64, *backend.Error) {
	if !m.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "map: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		var value []byte
		found, err := waitForKey(&m.mu, m.watcher, k, mo, timeout, func() bool {
			e, ok := m.lookup(k)
			if ok {
				value = e.value
			}
			return ok
		})
		if err != nil {
			return nil, err
		}
		if !found {
			sizes[i] = mode.KeyNotFound
			continue
		}
		sizes[i] = backend.WriteToSink(sink, i, value)
		if mo.Has(mode.CONSUME) {
			m.mu.Lock()
			m.tree.Delete(m.newEntry(k, nil))
			m.mu.Unlock()
		}
	}
	return sizes, nil
}

func (m *orderedMap) Erase(mo mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	if !m.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "map: unsupported mode")
	}
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		if _, err := waitForKey(&m.mu, m.watcher, k, mo, timeout, func() bool {
			_, ok := m.lookup(k)
			return ok
		}); err != nil {
			return err
		}
		m.mu.Lock()
		m.tree.Delete(m.newEntry(k, nil))
		m.mu.Unlock()
	}
	return nil
}

func (m *orderedMap) ListKeys(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink backend.Sink, maxRecords int) ([]uint64, *backend.Error) {
	ksizes, _, err := m.list(mo, fromKey, filter, keySink, nil, maxRecords)
	return ksizes, err
}

func (m *orderedMap) ListKeyValues(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	return m.list(mo, fromKey, filter, keySink, valueSink, maxRecords)
}

func (m *orderedMap) list(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	if !m.SupportsMode(mo) {
		return nil, nil, backend.NewError(backend.ErrOpUnsupported, "map: unsupported mode")
	}
	if maxRecords <= 0 {
		return nil, nil, backend.NewError(backend.ErrInvalidArgs, "maxRecords must be positive")
	}

	m.mu.RLock()
	type match struct{ key, value []byte }
	var matches []match
	visit := func(it btree.Item) bool {
		e := it.(mapEntry)
		if len(fromKey) > 0 && !mo.Has(mode.INCLUSIVE) && m.cmp(e.key, fromKey) == 0 {
			return true
		}
		if !filter.Check(e.key, e.value) {
			return !filter.ShouldStop(e.key)
		}
		matches = append(matches, match{key: e.key, value: e.value})
		return len(matches) < maxRecords
	}
	if len(fromKey) == 0 {
		m.tree.Ascend(visit)
	} else {
		m.tree.AscendGreaterOrEqual(m.newEntry(fromKey, nil), visit)
	}
	m.mu.RUnlock()

	ksizes := make([]uint64, maxRecords)
	var vsizes []uint64
	if valueSink != nil {
		vsizes = make([]uint64, maxRecords)
	}
	for i := 0; i < maxRecords; i++ {
		if i >= len(matches) {
			ksizes[i] = mode.NoMoreKeys
			if vsizes != nil {
				vsizes[i] = mode.NoMoreKeys
			}
			continue
		}
		isLast := i == len(matches)-1
		emit, elide := mode.KeyCopy(mo, matches[i].key, len(filter.Bytes), isLast)
		if elide {
			ksizes[i] = 0
		} else {
			ksizes[i] = backend.WriteToSink(keySink, i, emit)
		}
		if vsizes != nil {
			vsizes[i] = backend.WriteToSink(valueSink, i, matches[i].value)
		}
	}
	return ksizes, vsizes, nil
}
