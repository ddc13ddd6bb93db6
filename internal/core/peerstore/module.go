package peerstore

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
)

// ModuleInput 路由表模块输入
type ModuleInput struct {
	fx.In

	Config *config.Config `optional:"true"`
	Clock  clock.Clock    `optional:"true"`
}

// ModuleOutput 路由表模块输出
type ModuleOutput struct {
	fx.Out

	Table *Table
}

// ProvideTable 从统一配置创建路由表
func ProvideTable(input ModuleInput) ModuleOutput {
	var opts []Option
	if input.Clock != nil {
		opts = append(opts, WithClock(input.Clock))
	}
	if input.Config != nil {
		opts = append(opts, WithDefaultTTL(input.Config.Routing.TTL.Duration()))
	}
	return ModuleOutput{Table: NewTable(opts...)}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("peerstore",
		fx.Provide(ProvideTable),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In

	LC     fx.Lifecycle
	Table  *Table
	Config *config.Config `optional:"true"`
}

// registerLifecycle 启停后台过期清理
func registerLifecycle(input lifecycleInput) {
	interval := config.DefaultRoutingConfig().SweepInterval.Duration()
	if input.Config != nil {
		interval = input.Config.Routing.SweepInterval.Duration()
	}
	if interval <= 0 {
		return
	}

	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)
	input.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			wg.Add(1)
			go func() {
				defer wg.Done()
				input.Table.RunSweeper(ctx, interval)
			}()
			logger.Debug("路由表清理已启动", "interval", interval.String())
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			wg.Wait()
			return nil
		},
	})
}
