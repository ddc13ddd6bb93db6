package interfaces

import (
	"context"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// Registry 仓库注册表
//
// 同步循环只读取仓库列表并维护引用快照，不负责仓库的增删。
type Registry interface {
	// ListRepos 返回所有已知仓库，顺序即同步处理顺序
	ListRepos(ctx context.Context) ([]*types.Repo, error)

	// HasRefsChanged 比较 refs 与已保存的快照，忽略顺序
	HasRefsChanged(ctx context.Context, repoID string, refs []types.Ref) (bool, error)

	// BatchSaveRefs 以 refs 原子替换已保存的快照
	BatchSaveRefs(ctx context.Context, repoID string, refs []types.Ref) error
}
