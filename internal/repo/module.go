package repo

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

// ModuleInput 仓库模块输入
type ModuleInput struct {
	fx.In

	Engine engine.Engine
}

// ModuleOutput 仓库模块输出
type ModuleOutput struct {
	fx.Out

	Store    *Store
	Manager  *Manager
	Registry interfaces.Registry
}

// ProvideRepos 创建注册表与管理器
func ProvideRepos(input ModuleInput) ModuleOutput {
	store := NewStore(input.Engine)
	return ModuleOutput{
		Store:    store,
		Manager:  NewManager(store),
		Registry: store,
	}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("repo",
		fx.Provide(ProvideRepos),
		fx.Invoke(func(lc fx.Lifecycle, m *Manager) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := m.Load(ctx); err != nil {
						return err
					}
					logger.Info("仓库注册表已加载", "count", m.Count())
					return nil
				},
			})
		}),
	)
}
