package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              NodeType - 节点类型
// ============================================================================

// NodeType 节点类型
type NodeType int

const (
	// NodeTypeNormal 普通节点
	NodeTypeNormal NodeType = iota
	// NodeTypeRelay 中继节点
	NodeTypeRelay
)

// String 返回节点类型的字符串表示
func (t NodeType) String() string {
	switch t {
	case NodeTypeNormal:
		return "normal"
	case NodeTypeRelay:
		return "relay"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// ParseNodeType 从字符串解析节点类型（不区分大小写）
func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return NodeTypeNormal, nil
	case "relay":
		return NodeTypeRelay, nil
	default:
		return NodeTypeNormal, fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (t *NodeType) UnmarshalText(b []byte) error {
	parsed, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
