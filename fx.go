package megaengine

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/control"
	"github.com/dep2p/go-megaengine/internal/core/identity"
	"github.com/dep2p/go-megaengine/internal/core/node"
	"github.com/dep2p/go-megaengine/internal/core/peerstore"
	securitytls "github.com/dep2p/go-megaengine/internal/core/security/tls"
	"github.com/dep2p/go-megaengine/internal/core/storage"
	"github.com/dep2p/go-megaengine/internal/protocol/bundle"
	"github.com/dep2p/go-megaengine/internal/protocol/gossip"
	"github.com/dep2p/go-megaengine/internal/protocol/liveness"
	"github.com/dep2p/go-megaengine/internal/reconcile"
	"github.com/dep2p/go-megaengine/internal/repo"
	"github.com/dep2p/go-megaengine/internal/vcs"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

// buildFxApp 构建 fx 应用
//
// 模块按依赖顺序加载，OnStart 也按此顺序执行：
//  1. 身份与证书：密钥对、CA 与叶子证书（在 Provide 阶段完成）
//  2. 存储：badger 引擎（OnStart 时打开）、仓库注册表、路由表
//  3. 网络：节点监听、bundle 协议、存活探测、传播服务
//  4. 同步：两个后台循环
//  5. 本地控制：命令行在节点运行期间访问注册表的 unix socket
func buildFxApp(cfg *config.Config, o *options, eng *Engine) *fx.App {
	modules := []fx.Option{
		fx.Supply(cfg),

		// 身份与证书
		identity.Module(),
		securitytls.Module(),

		// 存储
		storage.Module(),
		repo.Module(),
		peerstore.Module(),
		vcs.Module(),

		// 网络
		node.Module(),
		bundle.Module(),
		liveness.Module(),
		gossip.Module(),

		// 同步
		reconcile.Module(),

		// 本地控制
		control.Module(),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 可选注入
	// ════════════════════════════════════════════════════════════════════════
	if o.keyPair != nil {
		modules = append(modules, fx.Supply(fx.Annotated{Name: "injected_keypair", Target: o.keyPair}))
	}
	if o.clock != nil {
		modules = append(modules, fx.Provide(func() clock.Clock { return o.clock }))
	}
	if o.gossip != nil {
		modules = append(modules, fx.Supply(o.gossip))
	}
	if o.vcs != nil {
		modules = append(modules, fx.Decorate(func(interfaces.VCS) interfaces.VCS { return o.vcs }))
	}
	if o.requester != nil {
		modules = append(modules, fx.Decorate(func(interfaces.BundleRequester) interfaces.BundleRequester { return o.requester }))
	}
	modules = append(modules, o.fxOptions...)

	modules = append(modules,
		fx.Populate(&eng.node, &eng.routing, &eng.repos, &eng.bundle, &eng.liveness),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)
	return fx.New(modules...)
}
