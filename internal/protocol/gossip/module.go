package gossip

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/internal/core/node"
)

// ModuleInput 传播模块输入
type ModuleInput struct {
	fx.In

	LC      fx.Lifecycle
	Node    *node.Node
	Factory Factory `optional:"true"`
}

// Module 返回 fx 模块
//
// 未提供 Factory 时不注册任何生命周期钩子。
func Module() fx.Option {
	return fx.Module("protocol/gossip",
		fx.Invoke(func(input ModuleInput) {
			if input.Factory == nil {
				return
			}
			r := NewRunner(input.Factory, input.Node)
			input.LC.Append(fx.Hook{
				OnStart: r.Start,
				OnStop:  r.Stop,
			})
		}),
	)
}
