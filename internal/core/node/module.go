package node

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/core/identity"
	"github.com/dep2p/go-megaengine/internal/core/transport/quic"
)

// ModuleInput 节点模块输入
type ModuleInput struct {
	fx.In

	Config  *config.Config
	KeyPair *identity.KeyPair

	// CertPaths 依赖证书模块，保证监听前证书已生成
	CertPaths config.CertPaths
}

// ModuleOutput 节点模块输出
type ModuleOutput struct {
	fx.Out

	Node *Node
}

// ProvideNode 创建本地节点
func ProvideNode(input ModuleInput) (ModuleOutput, error) {
	n, err := New(input.KeyPair,
		input.Config.Node.Alias,
		input.Config.Node.Addresses(),
		input.Config.Node.Type)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Node: n}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("node",
		fx.Provide(ProvideNode),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC     fx.Lifecycle
	Node   *Node
	Config *config.Config
}

// registerLifecycle 启动时监听，停止时关闭连接
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			_, err := input.Node.StartListener(quic.FromConfig(input.Config))
			return err
		},
		OnStop: func(context.Context) error {
			return input.Node.Close()
		},
	})
}
