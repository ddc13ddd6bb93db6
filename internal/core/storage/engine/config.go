package engine

import (
	"fmt"
	"os"
	"time"
)

// Config 存储引擎配置
type Config struct {
	// Path 数据目录，InMemory 为 true 时忽略
	Path string

	// InMemory 纯内存模式，不落盘
	InMemory bool

	// SyncWrites 每次写入同步到磁盘
	SyncWrites bool

	// GCInterval 值日志 GC 周期，0 表示不启动
	GCInterval time.Duration

	// GCDiscardRatio 值日志文件可回收比例阈值
	GCDiscardRatio float64
}

// DefaultConfig 返回指定目录的默认配置
func DefaultConfig(path string) *Config {
	return &Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig 返回内存模式配置
func InMemoryConfig() *Config {
	return &Config{
		InMemory:       true,
		GCDiscardRatio: 0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidConfig)
	}
	if c.GCInterval < 0 {
		return fmt.Errorf("%w: gc interval cannot be negative", ErrInvalidConfig)
	}
	if c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1 {
		return fmt.Errorf("%w: gc discard ratio must be in (0, 1)", ErrInvalidConfig)
	}
	return nil
}

// EnsureDir 创建数据目录
func (c *Config) EnsureDir() error {
	if c.InMemory {
		return nil
	}
	return os.MkdirAll(c.Path, 0700)
}
