// Package types 定义 MegaEngine 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - nodeid.go  - NodeID（did:key 自证明标识）派生、解析与公钥恢复
//   - node.go    - NodeInfo 节点公开信息
//   - enums.go   - NodeType（Normal/Relay）
//   - repo.go    - Repo、P2PDescription、Ref
//   - errors.go  - 公共错误定义
//
// # NodeID
//
// NodeID 的文本格式为 did:key:z...，其中 z 是 multibase base58btc 前缀，
// 解码后首字节为 0xED（Ed25519 标签），其后是 32 字节公钥。
//
//	id := types.DeriveNodeID(pub)
//	pub2, err := id.PublicKey()
//
// 所有解析错误都包装 ErrInvalidIdentity。
package types
