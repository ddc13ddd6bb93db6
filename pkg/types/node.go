package types

// ============================================================================
//                              NodeInfo - 节点信息
// ============================================================================

// NodeInfoVersion 当前 NodeInfo 结构版本
const NodeInfoVersion uint8 = 1

// NodeInfo 节点的公开信息
type NodeInfo struct {
	ID        NodeID   `json:"node_id"`
	Alias     string   `json:"alias"`
	Addresses []string `json:"addresses"`
	Type      NodeType `json:"node_type"`
	Version   uint8    `json:"version"`
}

// NewNodeInfo 创建当前版本的 NodeInfo
func NewNodeInfo(id NodeID, alias string, addrs []string, typ NodeType) NodeInfo {
	return NodeInfo{
		ID:        id,
		Alias:     alias,
		Addresses: append([]string(nil), addrs...),
		Type:      typ,
		Version:   NodeInfoVersion,
	}
}

// Clone 返回深拷贝
func (n NodeInfo) Clone() NodeInfo {
	n.Addresses = append([]string(nil), n.Addresses...)
	return n
}
