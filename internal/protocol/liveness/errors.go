package liveness

import "errors"

var (
	// ErrNotStarted 服务未启动
	ErrNotStarted = errors.New("liveness: service not started")

	// ErrNoConnectionManager 节点监听尚未启动
	ErrNoConnectionManager = errors.New("liveness: connection manager not available")

	// ErrUnknownPeer 路由表中没有该节点
	ErrUnknownPeer = errors.New("liveness: peer not in routing table")

	// ErrPayloadMismatch 回显载荷不一致
	ErrPayloadMismatch = errors.New("liveness: pong payload mismatch")
)
