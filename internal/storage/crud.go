package storage

import (
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/worklog/internal/model"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the database.
	ErrKeyNotFound = errors.New("key not found")
)

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// Get retrieves a value by key and unmarshals it into v.
func (d *DB) Get(key string, v model.Model) error {
	return d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, v); err != nil {
				return err
			}
			v.SetKey(key)
			return nil
		})
	})
}

// Set stores a model under its own key. A positive ttl lets badger expire
// the entry; expired entries are dropped from reads immediately and from disk
// by CollectGarbage.
func (d *DB) Set(v model.Model, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := badger.NewEntry([]byte(v.GetKey()), data)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
}

// Delete removes a key from the database.
func (d *DB) Delete(key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// CountByPrefix counts the live keys with the given prefix.
func (d *DB) CountByPrefix(prefix string) (int, error) {
	keys, err := d.ListByPrefix(prefix)
	return len(keys), err
}

// ListByPrefix returns every key with the given prefix, in key order.
func (d *DB) ListByPrefix(prefix string) ([]string, error) {
	var keys []string
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// GetAllByPrefix decodes every value with the given prefix, in key order.
// A limit of zero means no limit.
func GetAllByPrefix[T model.Model](d *DB, prefix string, limit int, newFunc func() T) ([]T, error) {
	var results []T
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if limit > 0 && len(results) >= limit {
				return nil
			}
			item := it.Item()
			v := newFunc()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, v)
			}); err != nil {
				return err
			}
			v.SetKey(string(item.KeyCopy(nil)))
			results = append(results, v)
		}
		return nil
	})
	return results, err
}
