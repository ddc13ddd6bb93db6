package config

import (
	"errors"
	"time"
)

// TransportConfig QUIC 传输配置
type TransportConfig struct {
	// ALPN 应用层协议标识
	ALPN string `json:"alpn"`

	// IdleTimeout 空闲超时
	IdleTimeout Duration `json:"idle_timeout"`

	// KeepAlivePeriod 保活周期
	KeepAlivePeriod Duration `json:"keep_alive_period"`

	// DialTimeout 拨号超时
	DialTimeout Duration `json:"dial_timeout"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ALPN:            "megaengine/1",
		IdleTimeout:     Duration(300 * time.Second),
		KeepAlivePeriod: Duration(30 * time.Second),
		DialTimeout:     Duration(10 * time.Second),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.ALPN == "" {
		return errors.New("transport: alpn cannot be empty")
	}
	if c.IdleTimeout <= 0 {
		return errors.New("transport: idle_timeout must be positive")
	}
	if c.KeepAlivePeriod <= 0 || c.KeepAlivePeriod >= c.IdleTimeout {
		return errors.New("transport: keep_alive_period must be positive and below idle_timeout")
	}
	if c.DialTimeout <= 0 {
		return errors.New("transport: dial_timeout must be positive")
	}
	return nil
}
