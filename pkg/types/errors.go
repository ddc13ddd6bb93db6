// Package types 定义 MegaEngine 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              身份格式错误
// ============================================================================

var (
	// ErrInvalidIdentity 身份格式错误（所有 NodeID 解析错误的根）
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrInvalidPrefix 缺少 did:key: 前缀
	ErrInvalidPrefix = fmt.Errorf("%w: missing did:key: prefix", ErrInvalidIdentity)

	// ErrEmptyIdentity 前缀后内容为空
	ErrEmptyIdentity = fmt.Errorf("%w: empty identifier", ErrInvalidIdentity)

	// ErrDecodeIdentity multibase 解码失败
	ErrDecodeIdentity = fmt.Errorf("%w: multibase decode failed", ErrInvalidIdentity)

	// ErrInvalidBase 编码基不是 base58btc
	ErrInvalidBase = fmt.Errorf("%w: invalid base format", ErrInvalidIdentity)

	// ErrInvalidKeyTag 负载为空或标签字节不是 0xED
	ErrInvalidKeyTag = fmt.Errorf("%w: invalid key prefix", ErrInvalidIdentity)

	// ErrInvalidKeyLength 负载长度不是 33 字节
	ErrInvalidKeyLength = fmt.Errorf("%w: invalid key length", ErrInvalidIdentity)
)

// ============================================================================
//                              节点类型错误
// ============================================================================

var (
	// ErrUnknownNodeType 无法识别的节点类型
	ErrUnknownNodeType = errors.New("unknown node type")
)
