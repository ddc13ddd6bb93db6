package bundle

import "errors"

var (
	// ErrOwnerUnknown 路由表中没有仓库所有者的地址
	ErrOwnerUnknown = errors.New("bundle: owner not in routing table")

	// ErrNoConnectionManager 节点监听尚未启动
	ErrNoConnectionManager = errors.New("bundle: connection manager not available")

	// ErrRejected 对端拒绝请求
	ErrRejected = errors.New("bundle: request rejected")

	// ErrInvalidMessage 消息格式无效
	ErrInvalidMessage = errors.New("bundle: invalid message")

	// ErrSelfRequest 不能向自己请求 bundle
	ErrSelfRequest = errors.New("bundle: cannot request from self")
)
