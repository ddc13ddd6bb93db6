package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// ============================================================================
//                              Manager
// ============================================================================

// Manager 仓库管理器
//
// 维护仓库 ID 到条目、本地路径到仓库 ID 两个索引。配置了 Store 时
// 注册和删除同时落盘，Load 从 Store 恢复索引。
type Manager struct {
	mu     sync.RWMutex
	repos  map[string]*types.Repo
	byPath map[string]string
	store  *Store
}

// NewManager 创建仓库管理器，store 可为 nil
func NewManager(store *Store) *Manager {
	return &Manager{
		repos:  make(map[string]*types.Repo),
		byPath: make(map[string]string),
		store:  store,
	}
}

// Load 从持久化注册表加载全部仓库
func (m *Manager) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	repos, err := m.store.ListRepos(ctx)
	if err != nil {
		return fmt.Errorf("加载仓库失败: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range repos {
		m.index(r)
	}
	return nil
}

// Register 注册仓库，ID 重复时返回 ErrRepoExists 且不改变任何状态
func (m *Manager) Register(ctx context.Context, r *types.Repo) error {
	if err := validateRepo(r); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.repos[r.RepoID]; ok {
		return fmt.Errorf("%w: %s", ErrRepoExists, r.RepoID)
	}
	if m.store != nil {
		if err := m.store.AddRepo(ctx, r); err != nil {
			return err
		}
	}
	m.index(r.Clone())

	logger.Info("仓库已注册", "repo", r.RepoID, "path", r.Path)
	return nil
}

// Get 按仓库 ID 查找
func (m *Manager) Get(repoID string) (*types.Repo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.repos[repoID]
	return r.Clone(), ok
}

// GetByPath 按本地路径查找仓库 ID
func (m *Manager) GetByPath(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPath[cleanPath(path)]
	return id, ok
}

// Remove 删除仓库并返回被删除的条目
func (m *Manager) Remove(ctx context.Context, repoID string) (*types.Repo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.repos[repoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, repoID)
	}
	if m.store != nil {
		if err := m.store.DeleteRepo(ctx, repoID); err != nil {
			return nil, err
		}
	}

	delete(m.repos, repoID)
	if m.byPath[cleanPath(r.Path)] == repoID {
		delete(m.byPath, cleanPath(r.Path))
	}
	return r, nil
}

// List 按仓库 ID 排序返回所有仓库
func (m *Manager) List() []*types.Repo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Repo, 0, len(m.repos))
	for _, r := range m.repos {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RepoID < out[j].RepoID })
	return out
}

// Count 返回仓库数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.repos)
}

// Store 返回持久化注册表，未配置时为 nil
func (m *Manager) Store() *Store {
	return m.store
}

func (m *Manager) index(r *types.Repo) {
	m.repos[r.RepoID] = r
	if r.Path != "" {
		m.byPath[cleanPath(r.Path)] = r.RepoID
	}
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}
