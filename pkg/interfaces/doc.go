// Package interfaces 定义 MegaEngine 核心依赖的协作者接口
//
// 同步循环和节点宿主只通过这里的接口访问外部组件：
//   - registry.go  仓库注册表（列举仓库、引用快照变更检测与保存）
//   - vcs.go       版本控制读取（引用列表、根提交）
//   - bundle.go    bundle 请求
//   - gossip.go    成员传播服务
//
// 每个接口在 internal 下都有一个可运行的实现，测试中可替换为桩。
package interfaces
