package repo

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// RepoIDPrefix 仓库 ID 前缀
const RepoIDPrefix = "did:repo:"

// GenerateRepoID 由根提交和创建者公钥派生仓库 ID
//
// 格式为 did:repo:<base58btc(sha256(root || pubkey))>，同一创建者的
// 同一历史总是得到相同 ID。
func GenerateRepoID(rootCommit []byte, pub ed25519.PublicKey) (string, error) {
	if len(rootCommit) == 0 {
		return "", ErrEmptyRootCommit
	}
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: got %d bytes", types.ErrInvalidKeyLength, len(pub))
	}

	h := sha256.New()
	h.Write(rootCommit)
	h.Write(pub)

	encoded, err := multibase.Encode(multibase.Base58BTC, h.Sum(nil))
	if err != nil {
		return "", fmt.Errorf("编码仓库 ID 失败: %w", err)
	}
	return RepoIDPrefix + encoded, nil
}

// IsRepoID 检查文本是否具有仓库 ID 格式
func IsRepoID(s string) bool {
	rest, ok := strings.CutPrefix(s, RepoIDPrefix)
	if !ok || rest == "" {
		return false
	}
	enc, data, err := multibase.Decode(rest)
	return err == nil && enc == multibase.Base58BTC && len(data) == sha256.Size
}
