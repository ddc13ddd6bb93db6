package config

import (
	"errors"
	"time"
)

// RoutingConfig 节点路由表配置
type RoutingConfig struct {
	// TTL 路由条目存活时间
	TTL Duration `json:"ttl"`

	// SweepInterval 过期清理周期，0 表示不启动后台清理
	SweepInterval Duration `json:"sweep_interval"`

	// PingInterval 存活探测周期，0 表示不主动探测
	PingInterval Duration `json:"ping_interval"`
}

// DefaultRoutingConfig 返回默认路由表配置
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		TTL:           Duration(24 * time.Hour),
		SweepInterval: Duration(10 * time.Minute),
		PingInterval:  Duration(5 * time.Minute),
	}
}

// Validate 验证路由表配置
func (c RoutingConfig) Validate() error {
	if c.TTL <= 0 {
		return errors.New("routing: ttl must be positive")
	}
	if c.SweepInterval < 0 {
		return errors.New("routing: sweep_interval cannot be negative")
	}
	if c.PingInterval < 0 {
		return errors.New("routing: ping_interval cannot be negative")
	}
	return nil
}
