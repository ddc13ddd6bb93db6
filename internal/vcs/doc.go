// Package vcs 读取本地 Git 仓库状态。
//
// GitCLI 调用系统 git 命令获取分支与标签引用、根提交，是
// interfaces.VCS 的默认实现。
package vcs
