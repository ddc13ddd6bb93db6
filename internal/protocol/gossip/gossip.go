package gossip

import (
	"context"
	"errors"
	"sync"

	"github.com/dep2p/go-megaengine/internal/core/node"
	"github.com/dep2p/go-megaengine/internal/core/transport/quic"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("protocol/gossip")

// ErrNoConnectionManager 节点监听尚未启动
var ErrNoConnectionManager = errors.New("gossip: connection manager not available")

// Factory 根据连接管理器与本地节点构造传播服务
type Factory func(cm *quic.ConnectionManager, n *node.Node) interfaces.Gossip

// Runner 在后台运行传播服务
type Runner struct {
	factory Factory
	node    *node.Node

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewRunner 创建运行器
func NewRunner(factory Factory, n *node.Node) *Runner {
	return &Runner{factory: factory, node: n}
}

// Start 构造服务并在后台启动
//
// 服务返回的错误只记录日志，不影响节点运行。
func (r *Runner) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return nil
	}

	cm, ok := r.node.ConnectionManager()
	if !ok {
		return ErrNoConnectionManager
	}
	svc := r.factory(cm, r.node)
	if svc == nil {
		logger.Debug("传播服务工厂返回空，跳过")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		err := svc.Start(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("传播服务退出", "error", err)
		}
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}()
	logger.Info("传播服务已启动")
	return nil
}

// Stop 取消服务并等待其返回
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err 返回服务退出时的错误
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
