package megaengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/core/node"
	"github.com/dep2p/go-megaengine/internal/core/peerstore"
	"github.com/dep2p/go-megaengine/internal/protocol/bundle"
	"github.com/dep2p/go-megaengine/internal/protocol/liveness"
	"github.com/dep2p/go-megaengine/internal/repo"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("megaengine")

// stopTimeout 关闭超时
const stopTimeout = 15 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Engine
// ════════════════════════════════════════════════════════════════════════════

// Engine 运行中的 MegaEngine 节点
type Engine struct {
	cfg *config.Config
	app *fx.App

	node     *node.Node
	routing  *peerstore.Table
	repos    *repo.Manager
	bundle   *bundle.Service
	liveness *liveness.Service

	mu     sync.Mutex
	closed bool
}

// Start 组装并启动节点
//
// 密钥对缺失时返回 identity.ErrKeyPairMissing；证书材料会在监听前
// 生成或修复。返回后监听、存活探测与同步循环均已在后台运行。
func Start(ctx context.Context, cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	eng := &Engine{cfg: cfg}
	eng.app = buildFxApp(cfg, o, eng)
	if err := eng.app.Err(); err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, o.startTimeout)
	defer cancel()
	if err := eng.app.Start(startCtx); err != nil {
		logger.Error("节点启动失败", "error", err)
		return nil, err
	}

	info := eng.node.Info()
	logger.Info("节点已启动",
		"nodeID", info.ID.String(),
		"alias", info.Alias,
		"listen", eng.ListenAddr())
	return eng, nil
}

// Config 返回启动配置
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Node 返回本地节点
func (e *Engine) Node() *node.Node {
	return e.node
}

// Routing 返回路由表
func (e *Engine) Routing() *peerstore.Table {
	return e.routing
}

// Repos 返回仓库管理器
func (e *Engine) Repos() *repo.Manager {
	return e.repos
}

// Bundle 返回 bundle 请求服务
func (e *Engine) Bundle() *bundle.Service {
	return e.bundle
}

// Liveness 返回存活探测服务
func (e *Engine) Liveness() *liveness.Service {
	return e.liveness
}

// ListenAddr 返回实际监听地址，未监听时为空
func (e *Engine) ListenAddr() string {
	cm, ok := e.node.ConnectionManager()
	if !ok {
		return ""
	}
	return cm.Addr().String()
}

// Close 停止所有后台任务并释放资源
//
// 可重复调用，第二次调用返回 ErrEngineClosed。
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.closed = true
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := e.app.Stop(ctx); err != nil {
		logger.Warn("节点关闭出错", "error", err)
		return err
	}
	logger.Info("节点已关闭")
	return nil
}
