package gossip

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-megaengine/internal/core/identity"
	"github.com/dep2p/go-megaengine/internal/core/node"
	securitytls "github.com/dep2p/go-megaengine/internal/core/security/tls"
	"github.com/dep2p/go-megaengine/internal/core/transport/quic"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
	"github.com/dep2p/go-megaengine/pkg/types"
)

// blockingGossip 阻塞到上下文取消
type blockingGossip struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (g *blockingGossip) Start(ctx context.Context) error {
	g.started.Store(true)
	<-ctx.Done()
	g.stopped.Store(true)
	return ctx.Err()
}

type failingGossip struct{}

func (failingGossip) Start(context.Context) error { return errors.New("boom") }

func newNode(t *testing.T, listen bool) *node.Node {
	t.Helper()
	kp, err := identity.GenerateKeyPair()
	require.NoError(t, err)
	n, err := node.New(kp, "", nil, types.NodeTypeNormal)
	require.NoError(t, err)
	if !listen {
		return n
	}

	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	ca := filepath.Join(dir, "ca-cert.pem")
	require.NoError(t, securitytls.EnsureCertificates(cert, key, ca))
	_, err = n.StartListener(quic.NewConfig("127.0.0.1:0", cert, key, ca))
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestRunner_StartStop(t *testing.T) {
	n := newNode(t, true)
	g := &blockingGossip{}
	var gotCM *quic.ConnectionManager
	r := NewRunner(func(cm *quic.ConnectionManager, _ *node.Node) interfaces.Gossip {
		gotCM = cm
		return g
	}, n)

	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, g.started.Load, time.Second, 10*time.Millisecond)
	cm, _ := n.ConnectionManager()
	assert.Same(t, cm, gotCM)

	// 重复启动无副作用
	require.NoError(t, r.Start(context.Background()))

	require.NoError(t, r.Stop(context.Background()))
	assert.True(t, g.stopped.Load())
	assert.ErrorIs(t, r.Err(), context.Canceled)
}

func TestRunner_ServiceErrorIsContained(t *testing.T) {
	n := newNode(t, true)
	r := NewRunner(func(*quic.ConnectionManager, *node.Node) interfaces.Gossip {
		return failingGossip{}
	}, n)

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop(context.Background()))
	assert.EqualError(t, r.Err(), "boom")
}

func TestRunner_RequiresListener(t *testing.T) {
	n := newNode(t, false)
	r := NewRunner(func(*quic.ConnectionManager, *node.Node) interfaces.Gossip {
		return &blockingGossip{}
	}, n)
	assert.ErrorIs(t, r.Start(context.Background()), ErrNoConnectionManager)
	assert.NoError(t, r.Stop(context.Background()))
}

func TestModule_WithoutFactory(t *testing.T) {
	n := newNode(t, false)
	app := fxtest.New(t, fx.Supply(n), Module())
	app.RequireStart()
	app.RequireStop()
}

func TestModule_WithFactory(t *testing.T) {
	n := newNode(t, true)
	g := &blockingGossip{}
	factory := Factory(func(*quic.ConnectionManager, *node.Node) interfaces.Gossip { return g })

	app := fxtest.New(t, fx.Supply(n, factory), Module())
	app.RequireStart()
	require.Eventually(t, g.started.Load, time.Second, 10*time.Millisecond)
	app.RequireStop()
	assert.True(t, g.stopped.Load())
}
