// Package quic 实现 QUIC 传输
package quic

import "errors"

var (
	// ErrManagerClosed 连接管理器已关闭
	ErrManagerClosed = errors.New("connection manager closed")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidProtocol 协议标识为空、过长或包含换行
	ErrInvalidProtocol = errors.New("invalid protocol id")

	// ErrProtocolNotSupported 对端未注册该协议
	ErrProtocolNotSupported = errors.New("protocol not supported")
)
