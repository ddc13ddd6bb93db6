package interfaces

import "github.com/dep2p/go-megaengine/pkg/types"

// VCS 本地版本控制读取
type VCS interface {
	// ReadRefs 读取工作副本的引用列表，路径不是仓库时返回错误
	ReadRefs(path string) ([]types.Ref, error)

	// RootCommit 返回 HEAD 可达的根提交 ID（原始字节）
	RootCommit(path string) ([]byte, error)
}
