package tls

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
)

// ModuleInput 证书模块输入
type ModuleInput struct {
	fx.In

	Config *config.Config
	Clock  clock.Clock `optional:"true"`
}

// ModuleOutput 证书模块输出
type ModuleOutput struct {
	fx.Out

	Paths config.CertPaths
}

// ProvideCertificates 在构建依赖图时完成证书引导
//
// 引导发生在任何 OnStart 钩子之前，后台任务启动时证书文件已就绪。
func ProvideCertificates(input ModuleInput) (ModuleOutput, error) {
	var opts []BootstrapOption
	if input.Clock != nil {
		opts = append(opts, WithClock(input.Clock))
	}

	paths := input.Config.CertPaths()
	if err := NewBootstrapper(opts...).Ensure(paths.Cert, paths.Key, paths.CACert); err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Paths: paths}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("security/tls",
		fx.Provide(ProvideCertificates),
	)
}
