package liveness

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Option 配置选项
type Option func(*Config)

// Config 存活探测配置
type Config struct {
	// Interval 探测周期，0 表示只应答不主动探测
	Interval time.Duration

	// Timeout 单次探测超时
	Timeout time.Duration

	// FailThreshold 判定下线的连续失败次数
	FailThreshold int

	// RTTWindowSize RTT 滑动窗口大小
	RTTWindowSize int

	// MaxTracked 保留探测统计的节点上限，超出时淘汰最久未探测的节点
	MaxTracked int

	// Clock 时钟
	Clock clock.Clock
}

// DefaultMaxTracked 默认保留统计的节点上限
const DefaultMaxTracked = 1024

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Interval:      5 * time.Minute,
		Timeout:       5 * time.Second,
		FailThreshold: 3,
		RTTWindowSize: 10,
		MaxTracked:    DefaultMaxTracked,
		Clock:         clock.New(),
	}
}

// WithInterval 设置探测周期
func WithInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.Interval = interval
	}
}

// WithTimeout 设置超时
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithFailThreshold 设置失败阈值
func WithFailThreshold(threshold int) Option {
	return func(c *Config) {
		if threshold > 0 {
			c.FailThreshold = threshold
		}
	}
}

// WithRTTWindowSize 设置 RTT 窗口大小
func WithRTTWindowSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.RTTWindowSize = size
		}
	}
}

// WithMaxTracked 设置保留统计的节点上限
func WithMaxTracked(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTracked = n
		}
	}
}

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(cfg *Config) {
		if c != nil {
			cfg.Clock = c
		}
	}
}
