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
	backend.Register("unordered_map", NewHashMap)
}

// hashMapModes omits the ordered-listing bits: a hash table has no
// meaningful key ordering to walk, prefix-stop on, or paginate with
// KEEP_LAST semantics.
const hashMapModes = mode.NEW_ONLY | mode.EXIST_ONLY | mode.APPEND | mode.CONSUME |
	mode.WAIT | mode.NOTIFY

// HashMapConfig is the JSON configuration accepted by the
// "unordered_map" backend type.
type HashMapConfig struct {
	ID      string `json:"__id__,omitempty"`
	UseLock bool   `json:"use_lock"`
}

// hashMap is a key/value backend built on xsync.MapOf, used where callers
// need Put/Get/Exists/Erase throughput without ordered iteration.
type hashMap struct {
	mu      sync.RWMutex
	table   *xsync.MapOf[string, []byte]
	watcher *watch.Watcher
	config  HashMapConfig
	raw     []byte
}

// NewHashMap is a backend.Factory for the "unordered_map" backend type.
func NewHashMap(rawConfig []byte) (backend.Backend, *backend.Error) {
	var cfg HashMapConfig
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &cfg); err != nil {
			return nil, backend.NewError(backend.ErrInvalidConfig, "unordered_map: %v", err)
		}
	}
	h := &hashMap{
		table:   xsync.NewMapOf[string, []byte](),
		watcher: watch.New(),
		config:  cfg,
	}
	h.raw, _ = json.Marshal(cfg)
	return h, nil
}

func (h *hashMap) Name() string   { return "unordered_map" }
func (h *hashMap) Config() []byte { return h.raw }
func (h *hashMap) SupportsMode(mo mode.Bits) bool {
	return mo.Supports(hashMapModes)
}

func (h *hashMap) Info() backend.Info {
	return backend.Info{Name: "unordered_map", Count: uint64(h.table.Size()), Modes: hashMapModes}
}

func (h *hashMap) Destroy() error {
	h.table.Clear()
	return nil
}

func (h *hashMap) Count(mo mode.Bits) (uint64, *backend.Error) {
	if !h.SupportsMode(mo) {
		return 0, backend.NewError(backend.ErrOpUnsupported, "unordered_map: unsupported mode")
	}
	return uint64(h.table.Size()), nil
}

func (h *hashMap) Exists(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	if !h.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_map: unsupported mode")
	}
	flags := make([]bool, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		found, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			_, ok := h.table.Load(string(k))
			return ok
		})
		if err != nil {
			return nil, err
		}
		flags[i] = found
	}
	return flags, nil
}

func (h *hashMap) Length(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	if !h.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_map: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		var length int
		found, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			v, ok := h.table.Load(string(k))
			if ok {
				length = len(v)
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

func (h *hashMap) Put(mo mode.Bits, keys, values [][]byte) *backend.Error {
	if !h.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "unordered_map: unsupported mode")
	}
	if len(keys) != len(values) {
		return backend.NewError(backend.ErrInvalidArgs, "keys/values length mismmatch")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var toNotify []string
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		sk := string(k)
		existing, found := h.table.Load(sk)
		if mo.Has(mode.NEW_ONLY) && found {
			return backend.NewError(backend.ErrKeyExists, "key exists at index %d", i)
		}
		if mo.Has(mode.EXIST_ONLY) && !found {
			return backend.NewError(backend.ErrKeyNotFound, "key not found at index %d", i)
		}
		val := values[i]
		if mo.Has(mode.APPEND) && found {
			combined := make([]byte, 0, len(existing)+len(val))
			combined = append(combined, existing...)
			combined = append(combined, val...)
			val = combined
		} else {
			val = append([]byte(nil), val...)
		}
		h.table.Store(sk, val)
		if mo.Has(mode.NOTIFY) {
			toNotify = append(toNotify, sk)
		}
	}
	for _, k := range toNotify {
		h.watcher.Notify(k)
	}
	return nil
}

func (h *hashMap) Get(mo mode.Bits, keys [][]byte, sink backend.Sink, timeout time.Duration) ([]uint64, *backend.Error) {
	if !h.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_map: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		if len(k) == 0 {
			return nil, backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		var value []byte
		found, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			v, ok := h.table.Load(string(k))
			if ok {
				value = v
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
			h.mu.Lock()
			h.table.Delete(string(k))
			h.mu.Unlock()
		}
	}
	return sizes, nil
}

func (h *hashMap) Erase(mo mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	if !h.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "unordered_map: unsupported mode")
	}
	for i, k := range keys {
		if len(k) == 0 {
			return backend.NewError(backend.ErrInvalidArgs, "zero-length key at index %d", i)
		}
		if _, err := waitForKey(&h.mu, h.watcher, k, mo, timeout, func() bool {
			_, ok := h.table.Load(string(k))
			return ok
		}); err != nil {
			return err
		}
		h.mu.Lock()
		h.table.Delete(string(k))
		h.mu.Unlock()
	}
	return nil
}

// ListKeys is unsupported: an unordered hash table cannot honor a
// from-key cursor or KEEP_LAST pagination boundary.
func (h *hashMap) ListKeys(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink backend.Sink, maxRecords int) ([]uint64, *backend.Error) {
	return nil, backend.NewError(backend.ErrOpUnsupported, "unordered_map: listing is not supported")
}

func (h *hashMap) ListKeyValues(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	return nil, nil, backend.NewError(backend.ErrOpUnsupported, "unordered_map: listing is not supported")
}
