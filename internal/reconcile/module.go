package reconcile

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

// ModuleInput 同步模块输入
type ModuleInput struct {
	fx.In

	Config    *config.Config
	Registry  interfaces.Registry
	Requester interfaces.BundleRequester
	VCS       interfaces.VCS
	Clock     clock.Clock `optional:"true"`
}

// ModuleOutput 同步模块输出
type ModuleOutput struct {
	fx.Out

	Service *Service
}

// ProvideService 从统一配置创建同步服务
func ProvideService(input ModuleInput) ModuleOutput {
	rc := input.Config.Reconcile
	bundle := NewBundleReconciler(input.Registry, input.Requester,
		WithClock(input.Clock), WithInterval(rc.BundleInterval.Duration()))
	refs := NewRefReconciler(input.Registry, input.VCS,
		WithClock(input.Clock), WithInterval(rc.RefsInterval.Duration()))
	return ModuleOutput{Service: NewService(bundle, refs)}
}

// Module 返回 fx 模块
//
// Reconcile.Enable 为 false 时服务照常构造，但不启动循环。
func Module() fx.Option {
	return fx.Module("reconcile",
		fx.Provide(ProvideService),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, svc *Service) {
			if !cfg.Reconcile.Enable {
				logger.Info("同步循环已禁用")
				return
			}
			lc.Append(fx.Hook{
				OnStart: svc.Start,
				OnStop:  svc.Stop,
			})
		}),
	)
}
