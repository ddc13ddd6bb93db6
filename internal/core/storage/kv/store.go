// Package kv 在存储引擎上划分带前缀的命名空间
//
// 键布局（注册表）：
//
//	r/d/<repoID>          仓库条目
//	r/f/<repoID>/<ref>    引用快照
package kv

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
)

// Store 命名空间，所有键自动加上前缀
type Store struct {
	eng    engine.Engine
	prefix []byte
}

// New 创建命名空间
func New(eng engine.Engine, prefix string) *Store {
	return &Store{eng: eng, prefix: []byte(prefix)}
}

// Sub 返回嵌套命名空间
func (s *Store) Sub(prefix string) *Store {
	return New(s.eng, string(s.prefix)+prefix)
}

// View 在只读快照中执行 fn
func (s *Store) View(fn func(*Tx) error) error {
	return s.eng.View(func(r engine.Reader) error {
		return fn(&Tx{prefix: s.prefix, r: r})
	})
}

// Update 在读写事务中执行 fn
func (s *Store) Update(fn func(*Tx) error) error {
	return s.eng.Update(func(t engine.Txn) error {
		return fn(&Tx{prefix: s.prefix, r: t, w: t})
	})
}

// Tx 命名空间内的事务视图，只在回调内有效
type Tx struct {
	prefix []byte
	r      engine.Reader
	w      engine.Txn
}

func (tx *Tx) key(k string) []byte {
	out := make([]byte, 0, len(tx.prefix)+len(k))
	return append(append(out, tx.prefix...), k...)
}

// Has 检查键是否存在
func (tx *Tx) Has(k string) (bool, error) {
	return tx.r.Has(tx.key(k))
}

// GetJSON 读取并解码 JSON 值
func (tx *Tx) GetJSON(k string, v interface{}) error {
	data, err := tx.r.Get(tx.key(k))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解码 %q 失败: %w", k, err)
	}
	return nil
}

// Scan 遍历 sub 下的键值，回调收到的键去掉了命名空间前缀与 sub
func (tx *Tx) Scan(sub string, fn func(key string, value []byte) error) error {
	full := tx.key(sub)
	return tx.r.Scan(full, func(k, v []byte) error {
		return fn(string(k[len(full):]), v)
	})
}

// Set 写入原始值
func (tx *Tx) Set(k string, value []byte) error {
	if tx.w == nil {
		return errReadOnly
	}
	return tx.w.Set(tx.key(k), value)
}

// PutJSON 编码并写入 JSON 值
func (tx *Tx) PutJSON(k string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Set(k, data)
}

// Delete 删除键
func (tx *Tx) Delete(k string) error {
	if tx.w == nil {
		return errReadOnly
	}
	return tx.w.Delete(tx.key(k))
}

// DeletePrefix 删除 sub 下的所有键
func (tx *Tx) DeletePrefix(sub string) error {
	if tx.w == nil {
		return errReadOnly
	}
	return tx.w.DeletePrefix(tx.key(sub))
}

var errReadOnly = errors.New("kv: write in read-only transaction")
