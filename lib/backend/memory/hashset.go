package memory

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/watch"
	"github.com/puzpuzpuz/xsync/v3"
)

func init() {
	backend.Register("unordered_set", NewHashSet)
}

const hashSetModes = mode.NEW_ONLY | mode.EXIST_ONLY | mode.CONSUME | mode.WAIT | mode.NOTIFY

// HashSetConfig is the JSON configuration accepted by the
// "unordered_set" backend type.
type HashSetConfig struct {
	ID      string `json:"__id__,omitempty"`
	UseLock bool   `json:"use_lock"`
}

// hashSet is a key-only membership backend built on xsync.MapOf[string,
// struct{}].
type hashSet struct {
	mu      sync.RWMutex
	table   *xsync.MapOf[string, struct{}]
	watcher *watch.Watcher
	config  HashSetConfig
	raw     []byte
}

// NewHashSet is a backend.Factory for the "unordered_set" backend type.
func NewHashSet(rawConfig []byte) (backend.Backend, *backend.Error) {
	var cfg HashSetConfig
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, backend.NewError(backend.ErrInvalidConfig, "unordered_set: %v", err)
		}
	}
	h := &hashSet{
		table:   xsync.NewMapOf[string, struct{}](),
		watcher: watch.New(),
		config:  cfg,
	}
	h.raw, _ = json.Marshal(cfg)
	return h, nil
}

func (h *hashSet) Name() string   { return "unordered_set" }
func (h *hashSet) Config() []byte { return h.raw }
func (h *hashSet) SupportsMode(mo mode.Bits) bool {
	return mo.Supports(hashSetModes)
}

func (h *hashSet) Info() backend.Info {
	return backend.Info{Name: "unordered_set", Count: uint64(h.table.Size()), Modes: hashSetModes}
}

func (h *hashSet) Destroy() error {
	h.table.Clear()
	return nil
}

func (h *hashSet) Count(mo mode.Bits) (uint64, *backend.Error) {
	if !h.SupportsMode(mo) {
		return 0, backend.NewError(backend.ErrOpUnsupported, "unordered_set: unsupported mode")
	}
	return uint64(h.table.Size()), nil
}

func (h *hashSet) has(key []byte) bool {
	_, ok := h.table.Load(string(key))
	return ok
}

func (h *hashSet) Exists(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	if !h.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_set: unsupported mode")
	}
	flags := make([]bool, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			return h.has(k)
		})
		if err != nil {
			return nil, err
		}
		flags[i] = found
	}
	return flags, nil
}

func (h *hashSet) Length(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	if !h.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_set: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			return h.has(k)
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

func (h *hashSet) Put(mo mode.Bits, keys, values [][]byte) *backend.Error {
	if !h.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "unordered_set: unsupported mode")
	}
	if len(keys) != len(values) {
		return backend.NewError(backend.ErrInvalidArgs, "keys/values length mismatch")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var toNotify []string
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		if len(values[i]) != 0 {
			return backend.NewError(backend.ErrInvalidArgs, "set backend requires zero-length value at index %d", i)
		}
		sk := string(k)
		found := h.has(k)
		if mo.Has(mode.NEW_ONLY) && found {
			return backend.NewError(backend.ErrKeyExists, "key exists at index %d", i)
		}
		if mo.Has(mode.EXIST_ONLY) && !found {
			return backend.NewError(backend.ErrKeyNotFound, "key not found at index %d", i)
		}
		h.table.Store(sk, struct{}{})
		if mo.Has(mode.NOTIFY) {
			toNotify = append(toNotify, sk)
		}
	}
	for _, k := range toNotify {
		h.watcher.Notify(k)
	}
	return nil
}

func (h *hashSet) Get(mo mode.Bits, keys [][]byte, sink backend.Sink, timeout time.Duration) ([]uint64, *backend.Error) {
	if !h.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_set: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			return h.has(k)
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
			h.mu.Lock()
			h.table.Delete(string(k))
			h.mu.Unlock()
		}
	}
	return sizes, nil
}

func (h *hashSet) Erase(mo mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	if !h.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "unordered_set: unsupported mode")
	}
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		if _, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			return h.has(k)
		}); err != nil {
			return err
		}
		h.mu.Lock()
		h.table.Delete(string(k))
		h.mu.Unlock()
	}
	return nil
}

func (h *hashSet) ListKeys(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink backend.Sink, maxRecords int) ([]uint64, *backend.Error) {
	return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_set: listing is not supported")
}

func (h *hashSet) ListKeyValues(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	return nil, nil, backend.NewError(backend.ErrOpUnsupported, "unordered_set: listing is not supported")
}
