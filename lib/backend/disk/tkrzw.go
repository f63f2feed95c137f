package disk

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/watch"
)

func init() {
	backend.Register("tkrzw", NewBadgerDB)
	backend.Register("gdbm", NewBadgerDB)
	backend.Register("unqlite", NewBadgerDB)
}

// tkrzwModes excludes ordered listing: badger's LSM key layout is exposed
// here as a pure hash table, matching the "tkrzw"/"gdbm"/"unqlite" tags'
// role as unordered engines in the original project.
const tkrzwModes = mode.NEW_ONLY | mode.EXIST_ONLY | mode.APPEND | mode.CONSUME |
	mode.WAIT | mode.NOTIFY

// BadgerConfig is the JSON configuration accepted by the "tkrzw",
// "gdbm", and "unqlite" backend types.
type BadgerConfig struct {
	ID   string `json:"__id__,omitempty"`
	Path string `json:"path"`
}

// badgerDB is a hash key/value backend layered on badger, standing in
// for three distinct unordered native engines from the original project.
type badgerDB struct {
	mu      sync.RWMutex
	db      *badger.DB
	path    string
	watcher *watch.Watcher
	config  BadgerConfig
	raw     []byte
}

// NewBadgerDB is a backend.Factory for the "tkrzw"/"gdbm"/"unqlite"
// backend types.
func NewBadgerDB(rawConfig []byte) (backend.Backend, *backend.Error) {
	var cfg BadgerConfig
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, backend.NewError(backend.ErrInvalidConfig, "tkrzw: %v", err)
	}
	if cfg.Path == "" {
		return nil, backend.NewError(backend.ErrInvalidConfig, "tkrzw: path is required")
	}
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, backend.NewError(backend.ErrIO, "tkrzw: open %s: %v", cfg.Path, err)
	}
	b := &badgerDB{db: db, path: cfg.Path, watcher: watch.New(), config: cfg}
	b.raw, _ = json.Marshal(cfg)
	return b, nil
}

func (b *badgerDB) Name() string   { return "tkrzw" }
func (b *badgerDB) Config() []byte { return b.raw }
func (b *badgerDB) SupportsMode(mo mode.Bits) bool {
	return mo.Supports(tkrzwModes)
}

func (b *badgerDB) Info() backend.Info {
	count, _ := b.Count(0)
	return backend.Info{Name: "tkrzw", Count: count, Modes: tkrzwModes}
}

func (b *badgerDB) Destroy() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.db.Close(); err != nil {
		return err
	}
	return os.RemoveAll(b.path)
}

func (b *badgerDB) Count(mo mode.Bits) (uint64, *backend.Error) {
	if !b.SupportsMode(mo) {
		return 0, backend.NewError(backend.ErrOpUnsupported, "tkrzw: unsupported mode")
	}
	var n uint64
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, backend.NewError(backend.ErrIO, "tkrzw: %v", err)
	}
	return n, nil
}

func (b *badgerDB) get(key []byte) ([]byte, bool, *backend.Error) {
	var value []byte
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(v []byte) error {
			value = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, false, backend.NewError(backend.ErrIO, "tkrzw: %v", err)
	}
	return value, found, nil
}

func (b *badgerDB) waitCheck(key []byte, timeout time.Duration, mo mode.Bits, check func() (bool, *backend.Error)) (bool, *backend.Error) {
	for {
		found, err := check()
		if err != nil {
			return false, err
		}
		if found || !mo.Has(mode.WAIT) {
			return found, nil
		}
		ch := b.watcher.Add(string(key))
		if !watch.Wait(ch, timeout) {
			return false, backend.NewError(backend.ErrTimeout, "timed out waiting for key %q", key)
		}
	}
}

func (b *badgerDB) Exists(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	if !b.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "tkrzw: unsupported mode")
	}
	flags := make([]bool, len(keys))
	for i, k := range keys {
		found, err := b.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			_, ok, err := b.get(k)
			return ok, err
		})
		if err != nil {
			return nil, err
		}
		flags[i] = found
	}
	return flags, nil
}

func (b *badgerDB) Length(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	if !b.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "tkrzw: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		var value []byte
		found, err := b.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			v, ok, err := b.get(k)
			value = v
			return ok, err
		})
		if err != nil {
			return nil, err
		}
		if !found {
			sizes[i] = mode.KeyNotFound
		} else {
			sizes[i] = uint64(len(value))
		}
	}
	return sizes, nil
}

func (b *badgerDB) Put(mo mode.Bits, keys, values [][]byte) *backend.Error {
	if !b.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "tkrzw: unsupported mode")
	}
	if len(keys) != len(values) {
		return backend.NewError(backend.ErrInvalidArgs, "keys/values length mismatch")
	}
	var toNotify []string
	txErr := b.db.Update(func(txn *badger.Txn) error {
		for i, k := range keys {
			var existing []byte
			found := false
			item, err := txn.Get(k)
			if err == nil {
				found = true
				if verr := item.Value(func(v []byte) error {
					existing = append([]byte(nil), v...)
					return nil
				}); verr != nil {
					return verr
				}
			} else if err != badger.ErrKeyNotFound {
				return err
			}
			if mo.Has(mode.NEW_ONLY) && found {
				return backend.NewError(backend.ErrKeyExists, "key exists at index %d", i)
			}
			if mo.Has(mode.EXIST_ONLY) && !found {
				return backend.NewError(backend.ErrKeyNotFound, "key not found at index %d", i)
			}
			val := values[i]
			if mo.Has(mode.APPEND) && found {
				val = append(append([]byte(nil), existing...), val...)
			}
			if err := txn.Set(k, val); err != nil {
				return err
			}
			if mo.Has(mode.NOTIFY) {
				toNotify = append(toNotify, string(k))
			}
		}
		return nil
	})
	if txErr != nil {
		if berr, ok := txErr.(*backend.Error); ok {
			return berr
		}
		return backend.NewError(backend.ErrIO, "tkrzw: %v", txErr)
	}
	for _, k := range toNotify {
		b.watcher.Notify(k)
	}
	return nil
}

func (b *badgerDB) Get(mo mode.Bits, keys [][]byte, sink backend.Sink, timeout time.Duration) ([]uint64, *backend.Error) {
	if !b.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "tkrzw: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		var value []byte
		found, err := b.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			v, ok, err := b.get(k)
			value = v
			return ok, err
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
			_ = b.db.Update(func(txn *badger.Txn) error {
				return txn.Delete(k)
			})
		}
	}
	return sizes, nil
}

func (b *badgerDB) Erase(mo mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	if !b.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "tkrzw: unsupported mode")
	}
	for _, k := range keys {
		if _, err := b.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			_, ok, err := b.get(k)
			return ok, err
		}); err != nil {
			return err
		}
		if err := b.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(k)
		}); err != nil {
			return backend.NewError(backend.ErrIO, "tkrzw: %v", err)
		}
	}
	return nil
}

// ListKeys is unsupported: the tkrzw/gdbm/unqlite tags model unordered
// hash engines with no cursor-friendly key ordering.
func (b *badgerDB) ListKeys(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink backend.Sink, maxRecords int) ([]uint64, *backend.Error) {
	return nil, backend.NewError(backend.ErrOpUnsupported, "tkrzw: listing is not supported")
}

func (b *badgerDB) ListKeyValues(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	return nil, nil, backend.NewError(backend.ErrOpUnsupported, "tkrzw: listing is not supported")
}
