package control

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/repo"
)

// ModuleInput 控制端点模块输入
type ModuleInput struct {
	fx.In

	LC      fx.Lifecycle
	Config  *config.Config
	Manager *repo.Manager
}

// Module 返回 fx 模块
//
// Storage.ControlSocket 为空时不启动控制端点。
func Module() fx.Option {
	return fx.Module("control",
		fx.Invoke(func(input ModuleInput) {
			path := input.Config.Storage.ControlPath()
			if path == "" {
				logger.Info("控制端点已禁用")
				return
			}
			s := NewServer(path, input.Manager)
			input.LC.Append(fx.Hook{
				OnStart: s.Start,
				OnStop:  s.Stop,
			})
		}),
	)
}
