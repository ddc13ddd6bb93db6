package interfaces

import "context"

// Gossip 成员传播服务
//
// 由宿主在后台启动，ctx 取消时应返回。收到节点通告时负责
// 更新路由表。
type Gossip interface {
	Start(ctx context.Context) error
}
