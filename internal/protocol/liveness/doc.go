// Package liveness 实现路由表节点的存活探测。
//
// 服务周期性地向路由表中的每个节点发送 ping，对端原样回显随机载荷。
// 成功的探测会刷新路由条目的 LastSeen，并记录 RTT 统计；连续失败达到
// 阈值后节点被标记为下线，条目本身仍由路由表按 TTL 过期清理。
//
// 协议标识为 /megaengine/ping/1。
package liveness
