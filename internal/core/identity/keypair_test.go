package identity

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// ============================================================================
// 签名与验证
// ============================================================================

func TestKeyPair_SignVerify(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.True(t, kp.CanSign())

	messages := [][]byte{nil, []byte(""), []byte("hello"), make([]byte, 4096)}
	for _, msg := range messages {
		sig, err := kp.Sign(msg)
		require.NoError(t, err)
		assert.True(t, kp.Verify(msg, sig))
		assert.False(t, kp.Verify(append(msg, 'x'), sig))
	}
}

func TestKeyPair_VerifyWithOtherKeyFails(t *testing.T) {
	kp1, err := GenerateKeyPair()
	require.NoError(t, err)
	kp2, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("ref update")
	sig, err := kp1.Sign(msg)
	require.NoError(t, err)

	assert.True(t, kp1.Verify(msg, sig))
	assert.False(t, kp2.Verify(msg, sig))
}

func TestKeyPair_VerifyRejectsMalformedSignature(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.False(t, kp.Verify([]byte("m"), []byte{1, 2, 3}))
}

// ============================================================================
// 仅验证密钥对
// ============================================================================

func TestKeyPair_VerifyOnlyCannotSign(t *testing.T) {
	full, err := GenerateKeyPair()
	require.NoError(t, err)

	pub := full.VerifyingKeyBytes()
	vo, err := KeyPairFromVerifyingKeyBytes(pub[:])
	require.NoError(t, err)
	assert.False(t, vo.CanSign())

	for _, msg := range []string{"", "a", strings.Repeat("x", 1000)} {
		_, err := vo.Sign([]byte(msg))
		assert.ErrorIs(t, err, ErrNoSigningKey)
	}

	_, err = vo.SigningKeyBytes()
	assert.ErrorIs(t, err, ErrNoSigningKey)

	// 仍可验证完整密钥对的签名
	sig, err := full.Sign([]byte("m"))
	require.NoError(t, err)
	assert.True(t, vo.Verify([]byte("m"), sig))
}

func TestKeyPairFromVerifyingKeyBytes_InvalidLength(t *testing.T) {
	_, err := KeyPairFromVerifyingKeyBytes(make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestKeyPairFromSigningKeyBytes_Deterministic(t *testing.T) {
	var seed [ed25519.SeedSize]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	a := KeyPairFromSigningKeyBytes(seed)
	b := KeyPairFromSigningKeyBytes(seed)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.NodeID(), b.NodeID())

	got, err := a.SigningKeyBytes()
	require.NoError(t, err)
	assert.Equal(t, seed, got)
}

// ============================================================================
// NodeID 往返
// ============================================================================

func TestKeyPair_NodeIDRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	id := kp.NodeID()
	assert.True(t, strings.HasPrefix(id.String(), "did:key:z"))

	parsed, err := types.ParseNodeID(id.String())
	require.NoError(t, err)

	recovered, err := KeyPairFromNodeID(parsed)
	require.NoError(t, err)
	assert.Equal(t, kp.VerifyingKeyBytes(), recovered.VerifyingKeyBytes())
	assert.False(t, recovered.CanSign())
	assert.True(t, kp.VerifyOnly().Equal(recovered))
}

func TestKeyPairFromNodeID_Invalid(t *testing.T) {
	_, err := KeyPairFromNodeID(types.NodeID("did:key:"))
	assert.ErrorIs(t, err, types.ErrInvalidIdentity)
}

func TestKeyPair_Equal(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.True(t, kp.Equal(kp))
	assert.False(t, kp.Equal(other))
	assert.False(t, kp.Equal(kp.VerifyOnly()))
	assert.False(t, kp.Equal(nil))
}
