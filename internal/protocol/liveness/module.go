package liveness

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/core/node"
	"github.com/dep2p/go-megaengine/internal/core/peerstore"
)

// ModuleInput 存活探测模块输入
type ModuleInput struct {
	fx.In

	Config  *config.Config
	Node    *node.Node
	Routing *peerstore.Table
	Clock   clock.Clock `optional:"true"`
}

// ModuleOutput 存活探测模块输出
type ModuleOutput struct {
	fx.Out

	Service *Service
}

// ProvideService 从统一配置创建服务
func ProvideService(input ModuleInput) ModuleOutput {
	svc := New(input.Node, input.Routing,
		WithInterval(input.Config.Routing.PingInterval.Duration()),
		WithClock(input.Clock))
	return ModuleOutput{Service: svc}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("protocol/liveness",
		fx.Provide(ProvideService),
		fx.Invoke(func(lc fx.Lifecycle, svc *Service) {
			lc.Append(fx.Hook{
				OnStart: svc.Start,
				OnStop:  svc.Stop,
			})
		}),
	)
}
