package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
	"github.com/dep2p/go-megaengine/internal/core/storage/kv"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("repo")

// 存储前缀
const (
	storePrefix = "r/"
	repoPrefix  = "d/" // 仓库条目 d/<repoID>
	refsPrefix  = "f/" // 引用快照 f/<repoID>/<refName>
)

// ============================================================================
//                              Store
// ============================================================================

// Store 持久化仓库注册表
//
// 仓库条目以 JSON 保存，引用快照每个引用一个键。读改写操作各自在一个事务中完成。
type Store struct {
	root  *kv.Store
	repos *kv.Store
	refs  *kv.Store

	// 串行化读改写，避免事务冲突
	mu sync.Mutex
}

// NewStore 在存储引擎上创建注册表
func NewStore(eng engine.Engine) *Store {
	root := kv.New(eng, storePrefix)
	return &Store{
		root:  root,
		repos: root.Sub(repoPrefix),
		refs:  root.Sub(refsPrefix),
	}
}

// AddRepo 新增仓库，ID 已存在时返回 ErrRepoExists
func (s *Store) AddRepo(ctx context.Context, r *types.Repo) error {
	if err := validateRepo(r); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Update(func(tx *kv.Tx) error {
		exists, err := tx.Has(r.RepoID)
		if err != nil {
			return fmt.Errorf("查询仓库失败: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrRepoExists, r.RepoID)
		}
		return tx.PutJSON(r.RepoID, r)
	})
}

// SaveRepo 写入或覆盖仓库条目
func (s *Store) SaveRepo(ctx context.Context, r *types.Repo) error {
	if err := validateRepo(r); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Update(func(tx *kv.Tx) error {
		return tx.PutJSON(r.RepoID, r)
	})
}

// GetRepo 读取仓库条目
func (s *Store) GetRepo(ctx context.Context, repoID string) (*types.Repo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var r types.Repo
	err := s.repos.View(func(tx *kv.Tx) error {
		return tx.GetJSON(repoID, &r)
	})
	if errors.Is(err, engine.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, repoID)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRepo 删除仓库条目及其引用快照
func (s *Store) DeleteRepo(ctx context.Context, repoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.Update(func(tx *kv.Tx) error {
		exists, err := tx.Has(repoPrefix + repoID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrRepoNotFound, repoID)
		}
		if err := tx.Delete(repoPrefix + repoID); err != nil {
			return err
		}
		return tx.DeletePrefix(refsPrefix + repoID + "/")
	})
}

// ListRepos 按仓库 ID 顺序返回所有仓库
func (s *Store) ListRepos(ctx context.Context) ([]*types.Repo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var repos []*types.Repo
	err := s.repos.View(func(tx *kv.Tx) error {
		return tx.Scan("", func(id string, value []byte) error {
			var r types.Repo
			if err := json.Unmarshal(value, &r); err != nil {
				return fmt.Errorf("解码仓库 %q 失败: %w", id, err)
			}
			repos = append(repos, &r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return repos, nil
}

// SetBundlePath 记录已获取的 bundle 路径
func (s *Store) SetBundlePath(ctx context.Context, repoID, bundlePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repos.Update(func(tx *kv.Tx) error {
		var r types.Repo
		if err := tx.GetJSON(repoID, &r); err != nil {
			if errors.Is(err, engine.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrRepoNotFound, repoID)
			}
			return err
		}
		r.BundlePath = bundlePath
		return tx.PutJSON(repoID, &r)
	})
}

// ============================================================================
//                              引用快照
// ============================================================================

// LoadRefs 读取引用快照，按引用名排序
func (s *Store) LoadRefs(ctx context.Context, repoID string) ([]types.Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var refs []types.Ref
	err := s.refs.View(func(tx *kv.Tx) error {
		return tx.Scan(repoID+"/", func(name string, hash []byte) error {
			refs = append(refs, types.Ref{Name: name, Hash: string(hash)})
			return nil
		})
	})
	return refs, err
}

// HasRefsChanged 比较 refs 与已保存快照，忽略顺序
func (s *Store) HasRefsChanged(ctx context.Context, repoID string, refs []types.Ref) (bool, error) {
	stored, err := s.LoadRefs(ctx, repoID)
	if err != nil {
		return false, err
	}
	return !sameRefs(stored, refs), nil
}

// BatchSaveRefs 以 refs 整体替换已保存快照
func (s *Store) BatchSaveRefs(ctx context.Context, repoID string, refs []types.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.refs.Update(func(tx *kv.Tx) error {
		dir := repoID + "/"
		if err := tx.DeletePrefix(dir); err != nil {
			return err
		}
		for _, ref := range refs {
			if ref.Name == "" {
				continue
			}
			if err := tx.Set(dir+ref.Name, []byte(ref.Hash)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("保存引用快照失败: %w", err)
	}

	logger.Debug("引用快照已更新", "repo", types.LastSegment(repoID), "refs", len(refs))
	return nil
}

// sameRefs 按引用名比较两组引用
func sameRefs(a, b []types.Ref) bool {
	am := refMap(a)
	bm := refMap(b)
	if len(am) != len(bm) {
		return false
	}
	for name, hash := range am {
		if other, ok := bm[name]; !ok || other != hash {
			return false
		}
	}
	return true
}

func refMap(refs []types.Ref) map[string]string {
	m := make(map[string]string, len(refs))
	for _, r := range refs {
		if r.Name != "" {
			m[r.Name] = r.Hash
		}
	}
	return m
}

func validateRepo(r *types.Repo) error {
	if r == nil || r.RepoID == "" {
		return ErrInvalidRepo
	}
	return nil
}

var _ interfaces.Registry = (*Store)(nil)
