// Package peerstore 实现节点路由表。
//
// 路由表是已知节点的内存目录：节点标识到地址列表、最后活跃时间、
// TTL 和信誉分的映射。它不负责发现节点，成员传播组件在收到节点通告时
// 调用 Insert 或 MarkAlive，过期条目由周期清理移除。
//
// # 存活判定
//
// 条目在距 LastSeen 的时长严格超过 TTL 后视为过期。默认 TTL 为 24 小时。
//
// # 使用示例
//
//	table := peerstore.NewTable()
//	_ = table.Insert(id, []string{"192.168.1.10:9000"})
//	table.MarkAlive(id)
//	removed := table.CleanupExpired()
//
// # 指标
//
//	megaengine_routing_peers          当前条目数
//	megaengine_routing_expired_total  清理移除的条目数
package peerstore
