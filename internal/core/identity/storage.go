package identity

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// ============================================================================
//                              密钥对持久化
// ============================================================================

// keyPairFile 磁盘上的密钥对格式
//
// signing_key 为空表示仅验证密钥对。
type keyPairFile struct {
	SigningKey   string `json:"signing_key,omitempty"`
	VerifyingKey string `json:"verifying_key"`
}

// SaveKeyPair 保存密钥对到 JSON 文件
//
// 目录不存在时创建（0700），文件通过临时文件 + rename 原子写入。
func SaveKeyPair(path string, kp *KeyPair) error {
	rec := keyPairFile{VerifyingKey: hex.EncodeToString(kp.public)}
	if kp.CanSign() {
		rec.SigningKey = hex.EncodeToString(kp.private.Seed())
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化密钥对失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("创建密钥目录失败: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("写入密钥对失败: %w", err)
	}
	return os.Chmod(path, 0600)
}

// LoadKeyPair 从 JSON 文件加载密钥对
//
// 文件不存在返回 ErrKeyPairNotFound；私钥与公钥不一致返回 ErrKeyPairMismatch。
func LoadKeyPair(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrKeyPairNotFound
		}
		return nil, fmt.Errorf("读取密钥对失败: %w", err)
	}

	var rec keyPairFile
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("解析密钥对失败: %w", err)
	}

	pub, err := hex.DecodeString(rec.VerifyingKey)
	if err != nil {
		return nil, fmt.Errorf("解析公钥失败: %w", err)
	}
	kp, err := KeyPairFromVerifyingKeyBytes(pub)
	if err != nil {
		return nil, err
	}
	if rec.SigningKey == "" {
		return kp, nil
	}

	seed, err := hex.DecodeString(rec.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: signing key %d bytes", ErrInvalidKeySize, len(seed))
	}
	full := KeyPairFromSigningKeyBytes([ed25519.SeedSize]byte(seed))
	if !full.public.Equal(kp.public) {
		return nil, ErrKeyPairMismatch
	}
	return full, nil
}

// KeyPairExists 检查密钥对文件是否存在
func KeyPairExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// InitKeyPair 生成并保存新的密钥对
//
// 文件已存在时返回 ErrKeyPairExists，不覆盖。
func InitKeyPair(path string) (*KeyPair, error) {
	if KeyPairExists(path) {
		return nil, ErrKeyPairExists
	}
	kp, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := SaveKeyPair(path, kp); err != nil {
		return nil, err
	}
	logger.Info("已生成新的节点密钥对", "path", path, "nodeID", kp.NodeID().String())
	return kp, nil
}
