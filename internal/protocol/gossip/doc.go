// Package gossip 管理成员传播服务的生命周期。
//
// 传播协议本身由调用方通过 Factory 提供。宿主在监听启动后构造服务，
// 在后台运行它，并在停止时取消其上下文。未提供 Factory 时本模块不做任何事。
package gossip
