package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/stigmahq/stigma-core/internal/codec"
	"github.com/stigmahq/stigma-core/internal/reactive"
)

// Table is one record family: keyed rows under a common prefix, with point
// lookups, filtered scans, upserts, deletes and aggregates. Every committed
// write broadcasts on the family's hub exactly once.
type Table[R Row] struct {
	db     *badger.DB
	prefix string
	cache  *gocache.Cache
	hub    *reactive.Hub
	less   func(a, b R) bool // default scan order

	// mu orders cache maintenance against committed writes. Writes only
	// ever drop cache entries; reads repopulate, and gen lets a read tell
	// whether a write committed while it was reading, in which case the
	// value it holds may already be stale and must not be cached.
	mu  sync.Mutex
	gen uint64
}

func newTable[R Row](db *badger.DB, prefix string, cache *gocache.Cache, hub *reactive.Hub, less func(a, b R) bool) *Table[R] {
	return &Table[R]{db: db, prefix: prefix, cache: cache, hub: hub, less: less}
}

// Hub returns the change hub observers subscribe to.
func (t *Table[R]) Hub() *reactive.Hub { return t.hub }

// invalidate records a committed write: it advances the write generation and
// drops the affected cache entries so readers rebuild them from the store.
func (t *Table[R]) invalidate(keys ...string) {
	t.mu.Lock()
	t.gen++
	for _, key := range keys {
		t.cache.Delete(key)
	}
	t.mu.Unlock()
}

func (t *Table[R]) key(id string) string { return t.prefix + id }

func (t *Table[R]) decode(key string, data []byte) (R, error) {
	var row R
	if err := json.Unmarshal(data, &row); err != nil {
		return row, fmt.Errorf("%w: row %s: %v", codec.ErrCorruptRecord, key, err)
	}
	return row, nil
}

// Get returns the row with the given id, or false when absent. Absence is
// not an error. Served from the read cache when possible.
func (t *Table[R]) Get(id string) (R, bool, error) {
	var zero R
	key := t.key(id)

	if cached, found := t.cache.Get(key); found {
		if row, ok := cached.(R); ok {
			return row, true, nil
		}
	}

	t.mu.Lock()
	gen := t.gen
	t.mu.Unlock()

	var data []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("get %s: %w", key, err)
	}

	row, err := t.decode(key, data)
	if err != nil {
		return zero, false, err
	}

	// Cache only if no write committed since the read started; otherwise
	// this value may predate a concurrent write's invalidation.
	t.mu.Lock()
	if t.gen == gen {
		t.cache.SetDefault(key, row)
	}
	t.mu.Unlock()
	return row, true, nil
}

// Scan returns all rows matching filter, ordered by less. A nil filter
// matches everything; a nil less uses the family's default descending
// time order. A row that fails to decode fails the whole scan.
func (t *Table[R]) Scan(filter func(R) bool, less func(a, b R) bool) ([]R, error) {
	rows := []R{}
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(t.prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(t.prefix)); it.ValidForPrefix([]byte(t.prefix)); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", item.Key(), err)
			}
			row, err := t.decode(string(item.Key()), data)
			if err != nil {
				return err
			}
			if filter == nil || filter(row) {
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if less == nil {
		less = t.less
	}
	if less != nil {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}
	return rows, nil
}

// Put upserts one row by primary key, replacing any existing row wholesale.
func (t *Table[R]) Put(row R) error {
	key := t.key(row.Key())
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row %s: %w", key, err)
	}

	err = t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	t.invalidate(key)
	t.hub.Broadcast()
	return nil
}

// PutAll upserts a batch of rows in a single transaction: either every row
// is applied or none is.
func (t *Table[R]) PutAll(rows []R) error {
	if len(rows) == 0 {
		return nil
	}

	encoded := make(map[string][]byte, len(rows))
	for _, row := range rows {
		key := t.key(row.Key())
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row %s: %w", key, err)
		}
		encoded[key] = data
	}

	err := t.db.Update(func(txn *badger.Txn) error {
		for key, data := range encoded {
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put batch: %w", err)
	}

	keys := make([]string, 0, len(encoded))
	for key := range encoded {
		keys = append(keys, key)
	}
	t.invalidate(keys...)
	t.hub.Broadcast()
	return nil
}

// Delete removes the row with the given id. Deleting an absent id succeeds.
func (t *Table[R]) Delete(id string) error {
	key := t.key(id)
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	t.invalidate(key)
	t.hub.Broadcast()
	return nil
}

// DeleteAll removes every row matching filter (all rows when nil) in one
// transaction and reports how many were removed. The transaction reads
// through an iterator, so a concurrent put on a matched key aborts the
// commit with ErrConflict; such aborts are retried a few times before the
// conflict reaches the caller.
func (t *Table[R]) DeleteAll(filter func(R) bool) (int, error) {
	const maxAttempts = 5

	var deleted int
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		deleted, err = t.deleteAllOnce(filter)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}

	if deleted > 0 {
		t.mu.Lock()
		t.gen++
		for _, key := range t.cacheKeys() {
			t.cache.Delete(key)
		}
		t.mu.Unlock()
		t.hub.Broadcast()
	}
	return deleted, nil
}

func (t *Table[R]) deleteAllOnce(filter func(R) bool) (int, error) {
	deleted := 0
	err := t.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(t.prefix)
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Seek([]byte(t.prefix)); it.ValidForPrefix([]byte(t.prefix)); it.Next() {
			item := it.Item()
			if filter != nil {
				data, err := item.ValueCopy(nil)
				if err != nil {
					it.Close()
					return fmt.Errorf("read %s: %w", item.Key(), err)
				}
				row, err := t.decode(string(item.Key()), data)
				if err != nil {
					it.Close()
					return err
				}
				if !filter(row) {
					continue
				}
			}
			keys = append(keys, item.KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return nil
	})
	return deleted, err
}

// cacheKeys lists the cached keys belonging to this family.
func (t *Table[R]) cacheKeys() []string {
	var keys []string
	for key := range t.cache.Items() {
		if len(key) >= len(t.prefix) && key[:len(t.prefix)] == t.prefix {
			keys = append(keys, key)
		}
	}
	return keys
}

// Count returns the number of rows matching filter (all rows when nil).
func (t *Table[R]) Count(filter func(R) bool) (int, error) {
	count := 0
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(t.prefix)
		if filter == nil {
			opts.PrefetchValues = false
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(t.prefix)); it.ValidForPrefix([]byte(t.prefix)); it.Next() {
			if filter == nil {
				count++
				continue
			}
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", it.Item().Key(), err)
			}
			row, err := t.decode(string(it.Item().Key()), data)
			if err != nil {
				return err
			}
			if filter(row) {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Average computes the mean of field over rows matching filter. Zero
// matching rows yield 0, not an error: no data yet is an expected state.
func (t *Table[R]) Average(filter func(R) bool, field func(R) float64) (float64, error) {
	rows, err := t.Scan(filter, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, row := range rows {
		sum += field(row)
	}
	return sum / float64(len(rows)), nil
}
