// Package identity 实现节点密钥材料管理
package identity

import "errors"

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrNoSigningKey 仅含公钥的密钥对无法签名
	ErrNoSigningKey = errors.New("no signing key")

	// ErrInvalidKeySize 密钥长度错误
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrKeyPairMismatch 私钥与公钥不匹配
	ErrKeyPairMismatch = errors.New("key pair mismatch")

	// ErrKeyPairNotFound 密钥对文件不存在
	ErrKeyPairNotFound = errors.New("keypair not found")

	// ErrKeyPairExists 密钥对文件已存在
	ErrKeyPairExists = errors.New("keypair already exists")
)
