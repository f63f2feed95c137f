package disk

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/watch"
	bolt "go.etcd.io/bbolt"
)

func init() {
	backend.Register("bdb", NewBoltDB)
	backend.Register("lmdb", NewBoltDB)
}

const boltDBModes = mode.INCLUSIVE | mode.NO_PREFIX | mode.SUFFIX | mode.IGNORE_KEYS |
	mode.KEEP_LAST | mode.NEW_ONLY | mode.EXIST_ONLY | mode.APPEND | mode.CONSUME |
	mode.WAIT | mode.NOTIFY | mode.LUA_FILTER | mode.LIB_FILTER

var boltBucket = []byte("kv")

// BoltDBConfig is the JSON configuration accepted by the "bdb" and "lmdb"
// backend types.
type BoltDBConfig struct {
	ID   string `json:"__id__,omitempty"`
	Path string `json:"path"`
}

// boltDB is an ordered key/value backend layered on a single bbolt
// bucket, used for the "bdb" and "lmdb" backend tags. Both tags name
// distinct native B+tree engines in the original project; bbolt covers
// both roles here since it offers the same ordered, memory-mapped
// single-writer semantics as either.
type boltDB struct {
	mu      sync.RWMutex
	db      *bolt.DB
	path    string
	watcher *watch.Watcher
	config  BoltDBConfig
	raw     []byte
}

// NewBoltDB is a backend.Factory for the "bdb"/"lmdb" backend types.
func NewBoltDB(rawConfig []byte) (backend.Backend, *backend.Error) {
	var cfg BoltDBConfig
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, backend.NewError(backend.ErrInvalidConfig, "bdb: %v", err)
	}
	if cfg.Path == "" {
		return nil, backend.NewError(backend.ErrInvalidConfig, "bdb: path is required")
	}
	db, err := bolt.Open(cfg.Path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, backend.NewError(backend.ErrIO, "bdb: open %s: %v", cfg.Path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		return nil, backend.NewError(backend.ErrIO, "bdb: %v", err)
	}
	b := &boltDB{db: db, path: cfg.Path, watcher: watch.New(), config: cfg}
	b.raw, _ = json.Marshal(cfg)
	return b, nil
}

func (b *boltDB) Name() string   { return "bdb" }
func (b *boltDB) Config() []byte { return b.raw }
func (b *boltDB) SupportsMode(mo mode.Bits) bool {
	return mo.Supports(boltDBModes)
}

func (b *boltDB) Info() backend.Info {
	count, _ := b.Count(0)
	return backend.Info{Name: "bdb", Count: count, Modes: boltDBModes}
}

func (b *boltDB) Destroy() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.db.Close(); err != nil {
		return err
	}
	return os.Remove(b.path)
}

func (b *boltDB) Count(mo mode.Bits) (uint64, *backend.Error) {
	if !b.SupportsMode(mo) {
		return 0, backend.NewError(backend.ErrOpUnsupported, "bdb: unsupported mode")
	}
	var n uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		n = uint64(tx.Bucket(boltBucket).Stats().KeyN)
		return nil
	})
	if err != nil {
		return 0, backend.NewError(backend.ErrIO, "bdb: %v", err)
	}
	return n, nil
}

func (b *boltDB) get(key []byte) ([]byte, bool) {
	var value []byte
	var found bool
	_ = b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(key)
		if v != nil {
			found = true
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, found
}

func (b *boltDB) waitCheck(key []byte, timeout time.Duration, mo mode.Bits, check func() bool) (bool, *backend.Error) {
	for {
		found := check()
		if found || !mo.Has(mode.WAIT) {
			return found, nil
		}
		ch := b.watcher.Add(string(key))
		if !watch.Wait(ch, timeout) {
			return false, backend.NewError(backend.ErrTimeout, "timed out waiting for key %q", key)
		}
	}
}

func (b *boltDB) Exists(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	if !b.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "bdb: unsupported mode")
	}
	flags := make([]bool, len(keys))
	for i, k := range keys {
		found, err := b.waitCheck(k, timeout, mo, func() bool {
			_, ok := b.get(k)
			return ok
		})
		if err != nil {
			return nil, err
		}
		flags[i] = found
	}
	return flags, nil
}

func (b *boltDB) Length(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	if !b.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "bdb: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		var value []byte
		found, err := b.waitCheck(k, timeout, mo, func() bool {
			v, ok := b.get(k)
			value = v
			return ok
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

func (b *boltDB) Put(mo mode.Bits, keys, values [][]byte) *backend.Error {
	if !b.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "bdb: unsupported mode")
	}
	if len(keys) != len(values) {
		return backend.NewError(backend.ErrInvalidArgs, "keys/values length mismatch")
	}
	var toNotify []string
	txErr := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		for i, k := range keys {
			existing := bucket.Get(k)
			found := existing != nil
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
			if err := bucket.Put(k, val); err != nil {
				return backend.NewError(backend.ErrIO, "bdb: %v", err)
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
		return backend.NewError(backend.ErrIO, "bdb: %v", txErr)
	}
	for _, k := range toNotify {
		b.watcher.Notify(k)
	}
	return nil
}

func (b *boltDB) Get(mo mode.Bits, keys [][]byte, sink backend.Sink, timeout time.Duration) ([]uint64, *backend.Error) {
	if !b.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "bdb: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		var value []byte
		found, err := b.waitCheck(k, timeout, mo, func() bool {
			v, ok := b.get(k)
			value = v
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
			_ = b.db.Update(func(tx *bolt.Tx) error {
				return tx.Bucket(boltBucket).Delete(k)
			})
		}
	}
	return sizes, nil
}

func (b *boltDB) Erase(mo mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	if !b.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "bdb: unsupported mode")
	}
	for _, k := range keys {
		if _, err := b.waitCheck(k, timeout, mo, func() bool {
			_, ok := b.get(k)
			return ok
		}); err != nil {
			return err
		}
		if err := b.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(boltBucket).Delete(k)
		}); err != nil {
			return backend.NewError(backend.ErrIO, "bdb: %v", err)
		}
	}
	return nil
}

func (b *boltDB) ListKeys(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink backend.Sink, maxRecords int) ([]uint64, *backend.Error) {
	ksizes, _, err := b.list(mo, fromKey, filter, keySink, nil, maxRecords)
	return ksizes, err
}

func (b *boltDB) ListKeyValues(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	return b.list(mo, fromKey, filter, keySink, valueSink, maxRecords)
}

func (b *boltDB) list(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	if !b.SupportsMode(mo) {
		return nil, nil, backend.NewError(backend.ErrOpUnsupported, "bdb: unsupported mode")
	}
	if maxRecords <= 0 {
		return nil, nil, backend.NewError(backend.ErrInvalidArgs, "maxRecords must be positive")
	}

	type match struct{ key, value []byte }
	var matches []match
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		var key, val []byte
		if len(fromKey) == 0 {
			key, val = c.First()
		} else {
			key, val = c.Seek(fromKey)
		}
		for ; key != nil; key, val = c.Next() {
			if len(fromKey) > 0 && !mo.Has(mode.INCLUSIVE) && bytes.Equal(key, fromKey) {
				continue
			}
			if !filter.Check(key, val) {
				if filter.ShouldStop(key) {
					break
				}
				continue
			}
			matches = append(matches, match{key: append([]byte(nil), key...), value: append([]byte(nil), val...)})
			if len(matches) >= maxRecords {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, backend.NewError(backend.ErrIO, "bdb: %v", err)
	}

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
