package vcs

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

// ModuleOutput 版本控制模块输出
type ModuleOutput struct {
	fx.Out

	GitCLI *GitCLI
	VCS    interfaces.VCS
}

// ProvideGit 创建基于系统 git 的读取器
func ProvideGit() ModuleOutput {
	g := NewGitCLI()
	return ModuleOutput{GitCLI: g, VCS: g}
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("vcs",
		fx.Provide(ProvideGit),
	)
}
