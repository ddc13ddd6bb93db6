package engine

import "errors"

var (
	// ErrNotFound 键不存在
	ErrNotFound = errors.New("storage: key not found")

	// ErrEmptyKey 空键
	ErrEmptyKey = errors.New("storage: empty key")

	// ErrClosed 引擎已关闭
	ErrClosed = errors.New("storage: engine closed")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrTxnTooLarge 单个事务写入过多
	ErrTxnTooLarge = errors.New("storage: transaction too large")

	// ErrConflict 并发事务冲突，可重试
	ErrConflict = errors.New("storage: transaction conflict")

	// ErrStopScan 由 Scan 回调返回以提前结束遍历
	ErrStopScan = errors.New("storage: stop scan")
)
