package config

import (
	"errors"
	"time"
)

// ReconcileConfig 后台同步循环配置
type ReconcileConfig struct {
	// Enable 是否启动同步循环
	Enable bool `json:"enable"`

	// BundleInterval bundle 同步周期
	BundleInterval Duration `json:"bundle_interval"`

	// RefsInterval 引用同步周期
	RefsInterval Duration `json:"refs_interval"`
}

// DefaultReconcileConfig 返回默认同步配置
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		Enable:         true,
		BundleInterval: Duration(30 * time.Second),
		RefsInterval:   Duration(60 * time.Second),
	}
}

// Validate 验证同步配置
func (c ReconcileConfig) Validate() error {
	if c.BundleInterval <= 0 {
		return errors.New("reconcile: bundle_interval must be positive")
	}
	if c.RefsInterval <= 0 {
		return errors.New("reconcile: refs_interval must be positive")
	}
	return nil
}
