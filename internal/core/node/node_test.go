package node

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-megaengine/internal/core/identity"
	securitytls "github.com/dep2p/go-megaengine/internal/core/security/tls"
	"github.com/dep2p/go-megaengine/internal/core/transport/quic"
	"github.com/dep2p/go-megaengine/pkg/types"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	kp, err := identity.GenerateKeyPair()
	require.NoError(t, err)
	n, err := New(kp, "alice", []string{"127.0.0.1:9000"}, types.NodeTypeNormal)
	require.NoError(t, err)
	return n
}

func newTestQUICConfig(t *testing.T) *quic.Config {
	t.Helper()
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	ca := filepath.Join(dir, "ca-cert.pem")
	require.NoError(t, securitytls.EnsureCertificates(cert, key, ca))
	return quic.NewConfig("127.0.0.1:0", cert, key, ca)
}

func TestNew(t *testing.T) {
	n := newTestNode(t)

	info := n.Info()
	assert.Equal(t, n.KeyPair().NodeID(), info.ID)
	assert.Equal(t, "alice", info.Alias)
	assert.Equal(t, types.NodeTypeNormal, info.Type)
	assert.Equal(t, types.NodeInfoVersion, info.Version)
	assert.Equal(t, info.ID, n.ID())

	// Info 返回副本
	info.Addresses[0] = "mutated"
	assert.Equal(t, "127.0.0.1:9000", n.Info().Addresses[0])

	_, err := New(nil, "x", nil, types.NodeTypeNormal)
	assert.ErrorIs(t, err, ErrNilKeyPair)
}

func TestSignMessage(t *testing.T) {
	n := newTestNode(t)
	msg := []byte("announce")

	sig, err := n.SignMessage(msg)
	require.NoError(t, err)
	assert.True(t, n.KeyPair().Verify(msg, sig))

	verifyOnly, err := New(n.KeyPair().VerifyOnly(), "ro", nil, types.NodeTypeRelay)
	require.NoError(t, err)
	_, err = verifyOnly.SignMessage(msg)
	assert.ErrorIs(t, err, identity.ErrNoSigningKey)
}

func TestConnectionManager_SetOnce(t *testing.T) {
	n := newTestNode(t)

	_, ok := n.ConnectionManager()
	assert.False(t, ok)

	cm, err := n.StartListener(newTestQUICConfig(t))
	require.NoError(t, err)
	defer n.Close()

	got, ok := n.ConnectionManager()
	require.True(t, ok)
	assert.Same(t, cm, got)

	assert.ErrorIs(t, n.SetConnectionManager(cm), ErrConnManagerAlreadySet)
	_, err = n.StartListener(newTestQUICConfig(t))
	assert.ErrorIs(t, err, ErrConnManagerAlreadySet)
	assert.ErrorIs(t, n.SetConnectionManager(nil), ErrNilConnManager)
}

func TestConnectionManager_ConcurrentReaders(t *testing.T) {
	n := newTestNode(t)
	_, err := n.StartListener(newTestQUICConfig(t))
	require.NoError(t, err)
	defer n.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cm, ok := n.ConnectionManager()
			assert.True(t, ok)
			assert.NotNil(t, cm)
		}()
	}
	wg.Wait()
}

func TestStartListener_BadCertificates(t *testing.T) {
	n := newTestNode(t)
	dir := t.TempDir()
	cfg := quic.NewConfig("127.0.0.1:0",
		filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem"), filepath.Join(dir, "ca-cert.pem"))

	_, err := n.StartListener(cfg)
	assert.Error(t, err)

	_, ok := n.ConnectionManager()
	assert.False(t, ok)
	assert.NoError(t, n.Close())
}
