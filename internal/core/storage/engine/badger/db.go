// Package badger 基于 BadgerDB 实现 engine.Engine
//
// 磁盘模式下后台周期回收值日志；内存模式用于测试和临时节点。
package badger

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("storage/badger")

// DB BadgerDB 存储引擎
type DB struct {
	db     *badger.DB
	cfg    engine.Config
	closed atomic.Bool

	stopGC chan struct{}
	gcDone chan struct{}
}

// Open 打开数据库，磁盘模式且 GCInterval > 0 时启动值日志回收
func Open(cfg *engine.Config) (*DB, error) {
	if cfg == nil {
		return nil, engine.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	opts := badger.DefaultOptions("").WithInMemory(true)
	if !cfg.InMemory {
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{})

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 badger 失败: %w", err)
	}

	d := &DB{db: bdb, cfg: *cfg}
	if !cfg.InMemory && cfg.GCInterval > 0 {
		d.stopGC = make(chan struct{})
		d.gcDone = make(chan struct{})
		go d.runGC()
	}
	logger.Debug("存储引擎已打开", "path", cfg.Path, "inMemory", cfg.InMemory)
	return d, nil
}

func (d *DB) runGC() {
	defer close(d.gcDone)
	t := time.NewTicker(d.cfg.GCInterval)
	defer t.Stop()

	for {
		select {
		case <-d.stopGC:
			return
		case <-t.C:
			n := 0
			for d.db.RunValueLogGC(d.cfg.GCDiscardRatio) == nil {
				n++
			}
			if n > 0 {
				logger.Debug("值日志已回收", "files", n)
			}
		}
	}
}

// View 在只读快照中执行 fn
func (d *DB) View(fn func(engine.Reader) error) error {
	if d.closed.Load() {
		return engine.ErrClosed
	}
	return mapError(d.db.View(func(t *badger.Txn) error {
		return fn(&txn{t: t})
	}))
}

// Update 在读写事务中执行 fn
func (d *DB) Update(fn func(engine.Txn) error) error {
	if d.closed.Load() {
		return engine.ErrClosed
	}
	return mapError(d.db.Update(func(t *badger.Txn) error {
		return fn(&txn{t: t})
	}))
}

// Close 停止回收并关闭数据库
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	if d.stopGC != nil {
		close(d.stopGC)
		<-d.gcDone
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("关闭 badger 失败: %w", err)
	}
	logger.Debug("存储引擎已关闭", "path", d.cfg.Path)
	return nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return engine.ErrNotFound
	case errors.Is(err, badger.ErrEmptyKey):
		return engine.ErrEmptyKey
	case errors.Is(err, badger.ErrTxnTooBig):
		return engine.ErrTxnTooLarge
	case errors.Is(err, badger.ErrConflict):
		return engine.ErrConflict
	case errors.Is(err, badger.ErrDBClosed):
		return engine.ErrClosed
	}
	return err
}

// badgerLogger 把 badger 日志接到 slog，Info 降为 Debug
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, args ...interface{})   { logger.Error(line(f, args)) }
func (badgerLogger) Warningf(f string, args ...interface{}) { logger.Warn(line(f, args)) }
func (badgerLogger) Infof(f string, args ...interface{})    { logger.Debug(line(f, args)) }
func (badgerLogger) Debugf(f string, args ...interface{})   { logger.Debug(line(f, args)) }

func line(f string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(f, args...))
}

var _ engine.Engine = (*DB)(nil)
