package peerstore

import (
	"time"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// DefaultTTL 路由条目默认存活时间
const DefaultTTL = 24 * time.Hour

// DefaultScore 新条目的初始信誉分
const DefaultScore = 1.0

// ============================================================================
//                              NodeRouting
// ============================================================================

// NodeRouting 已知节点的路由条目
//
// Score 目前只记录，不参与任何选择策略。
type NodeRouting struct {
	// NodeID 节点标识
	NodeID types.NodeID `json:"node_id"`

	// Addresses 可达地址列表
	Addresses []string `json:"addresses"`

	// LastSeen 最后一次收到存活信号的时间
	LastSeen time.Time `json:"last_seen"`

	// TTL 超过此时长未刷新即视为过期
	TTL time.Duration `json:"ttl"`

	// Score 信誉分
	Score float64 `json:"score"`
}

// NewNodeRouting 创建路由条目，LastSeen 设置为 now
func NewNodeRouting(id types.NodeID, addrs []string, now time.Time) NodeRouting {
	return NodeRouting{
		NodeID:    id,
		Addresses: append([]string(nil), addrs...),
		LastSeen:  now,
		TTL:       DefaultTTL,
		Score:     DefaultScore,
	}
}

// Refresh 将最后活跃时间更新为 now
func (r *NodeRouting) Refresh(now time.Time) {
	r.LastSeen = now
}

// Expired 距 LastSeen 的时长严格大于 TTL 时返回 true
func (r NodeRouting) Expired(now time.Time) bool {
	return now.Sub(r.LastSeen) > r.TTL
}

// Clone 返回深拷贝
func (r NodeRouting) Clone() NodeRouting {
	r.Addresses = append([]string(nil), r.Addresses...)
	return r
}
