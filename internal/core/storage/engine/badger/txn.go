package badger

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
)

// txn 包装 badger 事务
type txn struct {
	t *badger.Txn
}

func (x *txn) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, engine.ErrEmptyKey
	}
	item, err := x.t.Get(key)
	if err != nil {
		return nil, mapError(err)
	}
	return item.ValueCopy(nil)
}

func (x *txn) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, engine.ErrEmptyKey
	}
	_, err := x.t.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, mapError(err)
}

func (x *txn) Scan(prefix []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := x.t.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(item.KeyCopy(nil), value); err != nil {
			if errors.Is(err, engine.ErrStopScan) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (x *txn) Set(key, value []byte) error {
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return mapError(x.t.Set(key, value))
}

func (x *txn) Delete(key []byte) error {
	if len(key) == 0 {
		return engine.ErrEmptyKey
	}
	return mapError(x.t.Delete(key))
}

// DeletePrefix 先收集键再删除，迭代器打开时不能修改事务
func (x *txn) DeletePrefix(prefix []byte) error {
	var keys [][]byte
	err := x.Scan(prefix, func(key, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := x.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

var _ engine.Txn = (*txn)(nil)
