package peerstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("core/peerstore")

// ============================================================================
//                              Table
// ============================================================================

// Table 节点路由表
//
// 纯内存结构，并发安全。插入会覆盖已有条目并重置存活时间，
// 遍历结果不保证顺序。
type Table struct {
	mu      sync.RWMutex
	clock   clock.Clock
	ttl     time.Duration
	entries map[types.NodeID]NodeRouting
}

// Option 路由表选项
type Option func(*Table)

// WithClock 设置时钟，测试中注入 clock.NewMock()
func WithClock(c clock.Clock) Option {
	return func(t *Table) {
		t.clock = c
	}
}

// WithDefaultTTL 设置新条目的 TTL
func WithDefaultTTL(ttl time.Duration) Option {
	return func(t *Table) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// NewTable 创建空路由表
func NewTable(opts ...Option) *Table {
	t := &Table{
		clock:   clock.New(),
		ttl:     DefaultTTL,
		entries: make(map[types.NodeID]NodeRouting),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Insert 插入或覆盖节点条目
func (t *Table) Insert(id types.NodeID, addrs []string) error {
	if id.IsEmpty() {
		return ErrEmptyNodeID
	}

	entry := NewNodeRouting(id, addrs, t.clock.Now())
	entry.TTL = t.ttl

	t.mu.Lock()
	_, existed := t.entries[id]
	t.entries[id] = entry
	routingPeers.Set(float64(len(t.entries)))
	t.mu.Unlock()

	if !existed {
		logger.Debug("新增路由条目", "node", id.ShortString(), "addrs", len(addrs))
	}
	return nil
}

// InsertNode 以节点信息插入条目
func (t *Table) InsertNode(info types.NodeInfo) error {
	return t.Insert(info.ID, info.Addresses)
}

// MarkAlive 刷新节点的最后活跃时间，未知节点忽略
func (t *Table) MarkAlive(id types.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return
	}
	entry.Refresh(t.clock.Now())
	t.entries[id] = entry
}

// SetTTL 修改单个条目的 TTL
func (t *Table) SetTTL(id types.NodeID, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return ErrNotFound
	}
	entry.TTL = ttl
	t.entries[id] = entry
	return nil
}

// CleanupExpired 移除所有过期条目，返回移除数量
func (t *Table) CleanupExpired() int {
	now := t.clock.Now()

	t.mu.Lock()
	removed := 0
	for id, entry := range t.entries {
		if entry.Expired(now) {
			delete(t.entries, id)
			removed++
		}
	}
	n := len(t.entries)
	routingPeers.Set(float64(n))
	t.mu.Unlock()

	if removed > 0 {
		routingExpired.Add(float64(removed))
		logger.Debug("清理过期路由条目", "removed", removed, "remaining", n)
	}
	return removed
}

// Get 返回条目副本
func (t *Table) Get(id types.NodeID) (NodeRouting, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[id]
	if !ok {
		return NodeRouting{}, false
	}
	return entry.Clone(), true
}

// Addresses 返回节点地址副本
func (t *Table) Addresses(id types.NodeID) ([]string, error) {
	entry, ok := t.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return entry.Addresses, nil
}

// List 返回所有条目副本
func (t *Table) List() []NodeRouting {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]NodeRouting, 0, len(t.entries))
	for _, entry := range t.entries {
		out = append(out, entry.Clone())
	}
	return out
}

// Remove 删除条目
func (t *Table) Remove(id types.NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.entries[id]
	delete(t.entries, id)
	routingPeers.Set(float64(len(t.entries)))
	return ok
}

// Len 返回条目数
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// RunSweeper 按 interval 周期清理过期条目，直到 ctx 取消
func (t *Table) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := t.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.CleanupExpired()
		}
	}
}
