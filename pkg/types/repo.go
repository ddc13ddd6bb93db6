package types

import "time"

// ============================================================================
//                              Repo - 仓库描述
// ============================================================================

// P2PDescription 仓库在网络中的公开描述
type P2PDescription struct {
	// Creator 创建者 NodeID 文本
	Creator string `json:"creator"`

	// Name 仓库名
	Name string `json:"name"`

	// Description 自由文本描述
	Description string `json:"description"`

	// Timestamp 创建时间（Unix 秒）
	Timestamp int64 `json:"timestamp"`
}

// Repo 仓库条目
//
// IsExternal 为 true 表示本节点是副本而非源头；
// BundlePath 为空表示 bundle 尚未获取。
type Repo struct {
	RepoID      string         `json:"repo_id"`
	Description P2PDescription `json:"p2p_description"`
	Path        string         `json:"path"`
	IsExternal  bool           `json:"is_external"`
	BundlePath  string         `json:"bundle_path,omitempty"`
}

// NewRepo 创建本地（非外部）仓库条目
func NewRepo(repoID string, desc P2PDescription, path string) *Repo {
	return &Repo{
		RepoID:      repoID,
		Description: desc,
		Path:        path,
	}
}

// HasBundle 是否已有 bundle
func (r *Repo) HasBundle() bool {
	return r.BundlePath != ""
}

// Clone 返回深拷贝
func (r *Repo) Clone() *Repo {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// CreatedAt 返回创建时间
func (d P2PDescription) CreatedAt() time.Time {
	return time.Unix(d.Timestamp, 0)
}

// Ref 一个 Git 引用
type Ref struct {
	// Name 完整引用名，如 refs/heads/main
	Name string `json:"name"`

	// Hash 指向的对象 ID（十六进制）
	Hash string `json:"hash"`
}
