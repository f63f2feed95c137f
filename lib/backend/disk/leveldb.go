// Package disk provides backend.Backend implementations layered over
// embedded on-disk storage engines: pebble for the "leveldb"/"rocksdb"
// tags, bbolt for "bdb"/"lmdb", and badger for "tkrzw"/"gdbm"/"unqlite".
// Each tag is a distinct name a caller can request in its database
// configuration; several tags share one engine because the original
// project exposed multiple native library bindings with overlapping
// capabilities that this module collapses onto whichever real embedded
// engine best matches the semantics (ordered vs hash, listing support).
package disk

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/kvprovider/kvprovider/lib/backend"
	"github.com/kvprovider/kvprovider/lib/mode"
	"github.com/kvprovider/kvprovider/lib/watch"
)

func init() {
	backend.Register("leveldb", NewLevelDB)
	backend.Register("rocksdb", NewLevelDB)
}

const levelDBModes = mode.INCLUSIVE | mode.NO_PREFIX | mode.SUFFIX | mode.IGNORE_KEYS |
	mode.KEEP_LAST | mode.NEW_ONLY | mode.EXIST_ONLY | mode.APPEND | mode.CONSUME |
	mode.WAIT | mode.NOTIFY | mode.LUA_FILTER | mode.LIB_FILTER

// LevelDBConfig is the JSON configuration accepted by the "leveldb" and
// "rocksdb" backend types.
type LevelDBConfig struct {
	ID   string `json:"__id__,omitempty"`
	Path string `json:"path"`
}

// levelDB is an ordered key/value backend layered on a pebble.DB, used
// for the "leveldb" and "rocksdb" backend tags. Both tags name distinct
// native LSM engines in the original project; here they resolve to the
// same embedded implementation since the module never links a second
// native LSM library for a single-process Go binary.
type levelDB struct {
	mu      sync.RWMutex
	db      *pebble.DB
	path    string
	watcher *watch.Watcher
	config  LevelDBConfig
	raw     []byte
}

// NewLevelDB is a backend.Factory for the "leveldb"/"rocksdb" backend types.
func NewLevelDB(rawConfig []byte) (backend.Backend, *backend.Error) {
	var cfg LevelDBConfig
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, backend.NewError(backend.ErrInvalidConfig, "leveldb: %v", err)
	}
	if cfg.Path == "" {
		return nil, backend.NewError(backend.ErrInvalidConfig, "leveldb: path is required")
	}
	db, err := pebble.Open(cfg.Path, &pebble.Options{})
	if err != nil {
		return nil, backend.NewError(backend.ErrIO, "leveldb: open %s: %v", cfg.Path, err)
	}
	l := &levelDB{db: db, path: cfg.Path, watcher: watch.New(), config: cfg}
	l.raw, _ = json.Marshal(cfg)
	return l, nil
}

func (l *levelDB) Name() string   { return "leveldb" }
func (l *levelDB) Config() []byte { return l.raw }
func (l *levelDB) SupportsMode(mo mode.Bits) bool {
	return mo.Supports(levelDBModes)
}

func (l *levelDB) Info() backend.Info {
	count, _ := l.Count(0)
	return backend.Info{Name: "leveldb", Count: count, Modes: levelDBModes}
}

func (l *levelDB) Destroy() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.db.Close(); err != nil {
		return err
	}
	return os.RemoveAll(l.path)
}

func (l *levelDB) Count(mo mode.Bits) (uint64, *backend.Error) {
	if !l.SupportsMode(mo) {
		return 0, backend.NewError(backend.ErrOpUnsupported, "leveldb: unsupported mode")
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	iter := l.db.NewIter(nil)
	defer iter.Close()
	var n uint64
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, nil
}

func (l *levelDB) get(key []byte) ([]byte, bool, *backend.Error) {
	value, closer, err := l.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backend.NewError(backend.ErrIO, "leveldb: %v", err)
	}
	defer closer.Close()
	return append([]byte(nil), value...), true, nil
}

func (l *levelDB) waitCheck(key []byte, timeout time.Duration, mo mode.Bits, check func() (bool, *backend.Error)) (bool, *backend.Error) {
	for {
		l.mu.RLock()
		found, err := check()
		if err != nil {
			l.mu.RUnlock()
			return false, err
		}
		if found || !mo.Has(mode.WAIT) {
			l.mu.RUnlock()
			return found, nil
		}
		ch := l.watcher.Add(string(key))
		l.mu.RUnlock()
		if !watch.Wait(ch, timeout) {
			return false, backend.NewError(backend.ErrTimeout, "timed out waiting for key %q", key)
		}
	}
}

func (l *levelDB) Exists(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]bool, *backend.Error) {
	if !l.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "leveldb: unsupported mode")
	}
	flags := make([]bool, len(keys))
	for i, k := range keys {
		found, err := l.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			_, ok, err := l.get(k)
			return ok, err
		})
		if err != nil {
			return nil, err
		}
		flags[i] = found
	}
	return flags, nil
}

func (l *levelDB) Length(mo mode.Bits, keys [][]byte, timeout time.Duration) ([]uint64, *backend.Error) {
	if !l.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "leveldb: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		var value []byte
		found, err := l.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			v, ok, err := l.get(k)
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

func (l *levelDB) Put(mo mode.Bits, keys, values [][]byte) *backend.Error {
	if !l.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "leveldb: unsupported mode")
	}
	if len(keys) != len(values) {
		return backend.NewError(backend.ErrInvalidArgs, "keys/values length mismatch")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.db.NewBatch()
	var toNotify []string
	for i, k := range keys {
		existing, found, err := l.get(k)
		if err != nil {
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
		if err := batch.Set(k, val, nil); err != nil {
			return backend.NewError(backend.ErrIO, "leveldb: %v", err)
		}
		if mo.Has(mode.NOTIFY) {
			toNotify = append(toNotify, string(k))
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return backend.NewError(backend.ErrIO, "leveldb: %v", err)
	}
	for _, k := range toNotify {
		l.watcher.Notify(k)
	}
	return nil
}

func (l *levelDB) Get(mo mode.Bits, keys [][]byte, sink backend.Sink, timeout time.Duration) ([]uint64, *backend.Error) {
	if !l.SupportsMode(mo) {
		return nil, backend.NewError(backend.ErrOpUnsupported, "leveldb: unsupported mode")
	}
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		var value []byte
		found, err := l.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			v, ok, err := l.get(k)
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
			l.mu.Lock()
			_ = l.db.Delete(k, pebble.Sync)
			l.mu.Unlock()
		}
	}
	return sizes, nil
}

func (l *levelDB) Erase(mo mode.Bits, keys [][]byte, timeout time.Duration) *backend.Error {
	if !l.SupportsMode(mo) {
		return backend.NewError(backend.ErrOpUnsupported, "leveldb: unsupported mode")
	}
	for _, k := range keys {
		if _, err := l.waitCheck(k, timeout, mo, func() (bool, *backend.Error) {
			_, ok, err := l.get(k)
			return ok, err
		}); err != nil {
			return err
		}
		l.mu.Lock()
		err := l.db.Delete(k, pebble.Sync)
		l.mu.Unlock()
		if err != nil {
			return backend.NewError(backend.ErrIO, "leveldb: %v", err)
		}
	}
	return nil
}

func (l *levelDB) ListKeys(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink backend.Sink, maxRecords int) ([]uint64, *backend.Error) {
	ksizes, _, err := l.list(mo, fromKey, filter, keySink, nil, maxRecords)
	return ksizes, err
}

func (l *levelDB) ListKeyValues(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	return l.list(mo, fromKey, filter, keySink, valueSink, maxRecords)
}

func (l *levelDB) list(mo mode.Bits, fromKey []byte, filter mode.Filter, keySink, valueSink backend.Sink, maxRecords int) ([]uint64, []uint64, *backend.Error) {
	if !l.SupportsMode(mo) {
		return nil, nil, backend.NewError(backend.ErrOpUnsupported, "leveldb: unsupported mode")
	}
	if maxRecords <= 0 {
		return nil, nil, backend.NewError(backend.ErrInvalidArgs, "maxRecords must be positive")
	}

	l.mu.RLock()
	iter := l.db.NewIter(nil)
	type match struct{ key, value []byte }
	var matches []match
	valid := func() bool {
		if len(fromKey) == 0 {
			return iter.First()
		}
		return iter.SeekGE(fromKey)
	}
	for ok := valid(); ok; ok = iter.Next() {
		key := iter.Key()
		if len(fromKey) > 0 && !mo.Has(mode.INCLUSIVE) && bytes.Equal(key, fromKey) {
			continue
		}
		val := iter.Value()
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
	iter.Close()
	l.mu.RUnlock()

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
