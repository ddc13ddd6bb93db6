package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// ============================================================================
//                              KeyPair
// ============================================================================

// KeyPair Ed25519 密钥对
//
// 私钥可选：从公钥或 NodeID 恢复的密钥对只能验证，
// 调用 Sign 返回 ErrNoSigningKey。
type KeyPair struct {
	private ed25519.PrivateKey // nil 表示仅验证
	public  ed25519.PublicKey
}

// GenerateKeyPair 生成新的 Ed25519 密钥对
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成 Ed25519 密钥失败: %w", err)
	}
	return &KeyPair{private: priv, public: pub}, nil
}

// KeyPairFromSigningKeyBytes 从 32 字节私钥种子创建完整密钥对
func KeyPairFromSigningKeyBytes(seed [ed25519.SeedSize]byte) *KeyPair {
	priv := ed25519.NewKeyFromSeed(seed[:])
	return &KeyPair{
		private: priv,
		public:  priv.Public().(ed25519.PublicKey),
	}
}

// KeyPairFromVerifyingKeyBytes 从 32 字节公钥创建仅验证密钥对
func KeyPairFromVerifyingKeyBytes(pub []byte) (*KeyPair, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key %d bytes", ErrInvalidKeySize, len(pub))
	}
	return &KeyPair{public: append(ed25519.PublicKey(nil), pub...)}, nil
}

// KeyPairFromNodeID 从 NodeID 恢复仅验证密钥对
func KeyPairFromNodeID(id types.NodeID) (*KeyPair, error) {
	pub, err := id.PublicKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{public: pub}, nil
}

// CanSign 是否持有私钥
func (kp *KeyPair) CanSign() bool {
	return kp.private != nil
}

// Sign 对消息签名
func (kp *KeyPair) Sign(msg []byte) ([]byte, error) {
	if kp.private == nil {
		return nil, ErrNoSigningKey
	}
	return ed25519.Sign(kp.private, msg), nil
}

// Verify 验证签名
func (kp *KeyPair) Verify(msg, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(kp.public, msg, sig)
}

// PublicKey 返回公钥副本
func (kp *KeyPair) PublicKey() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), kp.public...)
}

// VerifyingKeyBytes 返回 32 字节公钥
func (kp *KeyPair) VerifyingKeyBytes() [ed25519.PublicKeySize]byte {
	var out [ed25519.PublicKeySize]byte
	copy(out[:], kp.public)
	return out
}

// SigningKeyBytes 返回 32 字节私钥种子
func (kp *KeyPair) SigningKeyBytes() ([ed25519.SeedSize]byte, error) {
	var out [ed25519.SeedSize]byte
	if kp.private == nil {
		return out, ErrNoSigningKey
	}
	copy(out[:], kp.private.Seed())
	return out, nil
}

// NodeID 返回该公钥派生的 NodeID
func (kp *KeyPair) NodeID() types.NodeID {
	return types.DeriveNodeID(kp.public)
}

// Equal 比较公钥以及私钥是否存在
func (kp *KeyPair) Equal(other *KeyPair) bool {
	if other == nil {
		return false
	}
	if kp.CanSign() != other.CanSign() {
		return false
	}
	if kp.CanSign() && subtle.ConstantTimeCompare(kp.private, other.private) != 1 {
		return false
	}
	return kp.public.Equal(other.public)
}

// VerifyOnly 返回去掉私钥的副本
func (kp *KeyPair) VerifyOnly() *KeyPair {
	return &KeyPair{public: kp.PublicKey()}
}
