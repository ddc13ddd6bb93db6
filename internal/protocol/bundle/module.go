package bundle

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/internal/core/node"
	"github.com/dep2p/go-megaengine/internal/core/peerstore"
	"github.com/dep2p/go-megaengine/internal/repo"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

// ModuleInput bundle 模块输入
type ModuleInput struct {
	fx.In

	Node    *node.Node
	Routing *peerstore.Table
	Repos   *repo.Store
}

// ModuleOutput bundle 模块输出
type ModuleOutput struct {
	fx.Out

	Service   *Service
	Requester interfaces.BundleRequester
}

// ProvideService 创建 bundle 服务
func ProvideService(input ModuleInput) ModuleOutput {
	svc := New(input.Node, input.Routing, input.Repos)
	return ModuleOutput{Service: svc, Requester: svc}
}

// Module 返回 fx 模块
//
// 必须排在 node 模块之后，保证注册处理函数时监听已启动。
func Module() fx.Option {
	return fx.Module("protocol/bundle",
		fx.Provide(ProvideService),
		fx.Invoke(func(lc fx.Lifecycle, svc *Service) {
			lc.Append(fx.Hook{
				OnStart: svc.Start,
				OnStop:  svc.Stop,
			})
		}),
	)
}
