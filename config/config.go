// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义，带 DefaultXxxConfig 与 Validate
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Node.Alias = "alice"
//	if err := cfg.ResolveRootDir(); err != nil { ... }
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// EnvRootDir 覆盖根数据目录的环境变量
const EnvRootDir = "MEGAENGINE_ROOT"

// DefaultRootDirName 默认根目录名（位于用户主目录下）
const DefaultRootDirName = ".megaengine"

// Config 是 MegaEngine 节点的完整配置
//
// 配置按照功能模块组织：
//   - Storage: 数据目录、密钥对文件、注册表数据库
//   - Node: 别名、监听地址、节点类型
//   - Cert: 证书目录
//   - Transport: QUIC 参数
//   - Routing: 路由表 TTL、清理周期与存活探测周期
//   - Reconcile: 后台同步周期
type Config struct {
	Storage   StorageConfig   `json:"storage"`
	Node      NodeConfig      `json:"node"`
	Cert      CertConfig      `json:"cert"`
	Transport TransportConfig `json:"transport"`
	Routing   RoutingConfig   `json:"routing"`
	Reconcile ReconcileConfig `json:"reconcile"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Storage:   DefaultStorageConfig(),
		Node:      DefaultNodeConfig(),
		Cert:      DefaultCertConfig(),
		Transport: DefaultTransportConfig(),
		Routing:   DefaultRoutingConfig(),
		Reconcile: DefaultReconcileConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		c.Storage, c.Node, c.Cert, c.Transport, c.Routing, c.Reconcile,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ResolveRootDir 确定根数据目录
//
// 优先级：MEGAENGINE_ROOT > Storage.RootDir > ~/.megaengine。
// 结果中的 ~ 会展开为用户主目录。
func (c *Config) ResolveRootDir() error {
	root := c.Storage.RootDir
	if env := os.Getenv(EnvRootDir); env != "" {
		root = env
	}
	if root == "" {
		root = filepath.Join("~", DefaultRootDirName)
	}

	expanded, err := ExpandHome(root)
	if err != nil {
		return err
	}
	c.Storage.RootDir = expanded
	return nil
}

// RootDir 返回根数据目录
func (c *Config) RootDir() string {
	return c.Storage.RootDir
}

// CertPaths 返回证书文件路径
func (c *Config) CertPaths() CertPaths {
	return c.Cert.Paths(c.Storage.RootDir)
}

// ExpandHome 展开路径开头的 ~
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE")
	}
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return "", fmt.Errorf("无法确定用户主目录: %w", err)
		}
	}
	return filepath.Join(home, p[1:]), nil
}

// ============================================================================
//                              JSON 加载与保存
// ============================================================================

// FromJSON 从 JSON 数据创建配置，缺省字段保留默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return FromJSON(data)
}

// Save 将配置以 JSON 格式原子写入文件
func (c *Config) Save(path string) error {
	if c == nil {
		return errors.New("config is nil")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
