package types

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
)

// ============================================================================
//                              NodeID - 节点标识
// ============================================================================

const (
	// NodeIDPrefix did:key 标识前缀
	NodeIDPrefix = "did:key:"

	// Ed25519KeyTag 公钥类型标签字节
	Ed25519KeyTag byte = 0xED

	// NodeIDEncoding NodeID 使用的 multibase 编码
	NodeIDEncoding = multibase.Base58BTC

	// nodeIDPayloadLen 标签字节 + 32 字节公钥
	nodeIDPayloadLen = 1 + ed25519.PublicKeySize
)

// NodeID 自证明节点标识
//
// 文本格式：
//
//	did:key:<multibase-base58btc(0xED || 32 字节 Ed25519 公钥)>
//
// NodeID 与公钥一一对应，校验无需任何注册中心。
// 相等性基于文本形式。
type NodeID string

// EmptyNodeID 空节点ID
const EmptyNodeID NodeID = ""

// DeriveNodeID 从 Ed25519 公钥派生 NodeID
//
// 确定性操作，不会失败。公钥长度不足 32 字节时会 panic。
func DeriveNodeID(pub ed25519.PublicKey) NodeID {
	if len(pub) != ed25519.PublicKeySize {
		panic(fmt.Sprintf("types: ed25519 公钥长度错误: %d", len(pub)))
	}

	payload := make([]byte, 0, nodeIDPayloadLen)
	payload = append(payload, Ed25519KeyTag)
	payload = append(payload, pub...)

	// Base58BTC 是 go-multibase 内置编码，Encode 不会返回错误
	encoded, _ := multibase.Encode(NodeIDEncoding, payload)
	return NodeID(NodeIDPrefix + encoded)
}

// ParseNodeID 从文本解析 NodeID
//
// 校验前缀、编码基、标签字节与负载长度，任何一项不符都返回
// 可用 errors.Is(err, ErrInvalidIdentity) 判断的错误。
func ParseNodeID(s string) (NodeID, error) {
	if _, err := decodeNodeID(s); err != nil {
		return EmptyNodeID, err
	}
	return NodeID(s), nil
}

// MustParseNodeID 解析 NodeID，失败时 panic（仅用于测试和常量）
func MustParseNodeID(s string) NodeID {
	id, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// PublicKey 从 NodeID 恢复 Ed25519 公钥
func (id NodeID) PublicKey() (ed25519.PublicKey, error) {
	payload, err := decodeNodeID(string(id))
	if err != nil {
		return nil, err
	}
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, payload[1:])
	return pub, nil
}

// decodeNodeID 解码并校验 NodeID 文本，返回 tag || pubkey 负载
func decodeNodeID(s string) ([]byte, error) {
	if !strings.HasPrefix(s, NodeIDPrefix) {
		return nil, ErrInvalidPrefix
	}
	rest := strings.TrimPrefix(s, NodeIDPrefix)
	if rest == "" {
		return nil, ErrEmptyIdentity
	}

	enc, payload, err := multibase.Decode(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeIdentity, err)
	}
	if enc != NodeIDEncoding {
		return nil, ErrInvalidBase
	}
	if len(payload) == 0 || payload[0] != Ed25519KeyTag {
		return nil, ErrInvalidKeyTag
	}
	if len(payload) != nodeIDPayloadLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(payload))
	}
	return payload, nil
}

// String 返回 NodeID 的文本形式
func (id NodeID) String() string {
	return string(id)
}

// ShortString 返回日志使用的简短形式
//
// 取 multibase 部分的末尾 8 个字符。
func (id NodeID) ShortString() string {
	s := LastSegment(string(id))
	if len(s) > 8 {
		return s[len(s)-8:]
	}
	return s
}

// IsEmpty 检查 NodeID 是否为空
func (id NodeID) IsEmpty() bool {
	return id == EmptyNodeID
}

// Equal 比较两个 NodeID 是否相等
func (id NodeID) Equal(other NodeID) bool {
	return id == other
}

// Validate 校验 NodeID 格式
func (id NodeID) Validate() error {
	_, err := decodeNodeID(string(id))
	return err
}

// MarshalText 实现 encoding.TextMarshaler
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，空值保持为空
func (id *NodeID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = EmptyNodeID
		return nil
	}
	parsed, err := ParseNodeID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// LastSegment 返回以 ':' 分隔的标识中最后一段
//
// 用于从 did:key:/did:repo: 形式的标识中取出编码部分。
func LastSegment(id string) string {
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}
