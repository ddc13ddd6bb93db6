package peerstore

import "errors"

var (
	// ErrNotFound 节点不在路由表中
	ErrNotFound = errors.New("peer not found")

	// ErrInvalidTTL TTL 必须为正
	ErrInvalidTTL = errors.New("invalid ttl")

	// ErrEmptyNodeID 节点标识为空
	ErrEmptyNodeID = errors.New("empty node id")
)
