package megaengine

import "errors"

var (
	// ErrEngineClosed 引擎已关闭
	ErrEngineClosed = errors.New("engine closed")

	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("config is nil")
)
