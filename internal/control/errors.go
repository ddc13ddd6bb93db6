package control

import "errors"

var (
	// ErrNoEndpoint 控制端点不存在或无进程应答
	ErrNoEndpoint = errors.New("control: no running node")

	// ErrEndpointInUse 另一个节点正在使用同一控制端点
	ErrEndpointInUse = errors.New("control: endpoint already in use")
)
