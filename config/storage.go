package config

import (
	"errors"
	"path/filepath"
)

// StorageConfig 存储配置
//
// 数据目录结构：
//
//	${RootDir}/
//	├── keypair          # 节点密钥对（JSON）
//	├── cert/            # 证书目录（见 CertConfig）
//	├── control.sock     # 本地控制端点（节点运行时存在）
//	└── db/              # BadgerDB 仓库注册表
type StorageConfig struct {
	// RootDir 根数据目录
	// 为空时使用 MEGAENGINE_ROOT 或 ~/.megaengine
	RootDir string `json:"root_dir"`

	// KeyPairFile 密钥对文件名（相对 RootDir）
	KeyPairFile string `json:"keypair_file"`

	// DBDir 注册表数据库目录名（相对 RootDir）
	DBDir string `json:"db_dir"`

	// ControlSocket 本地控制端点的 unix socket 文件（相对 RootDir）
	// 为空时不开启控制端点
	ControlSocket string `json:"control_socket"`

	// InMemory 使用内存数据库（测试用）
	InMemory bool `json:"in_memory,omitempty"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		RootDir:       "",
		KeyPairFile:   "keypair",
		DBDir:         "db",
		ControlSocket: "control.sock",
	}
}

// Validate 验证存储配置
func (c StorageConfig) Validate() error {
	if c.KeyPairFile == "" {
		return errors.New("storage: keypair_file cannot be empty")
	}
	if c.DBDir == "" && !c.InMemory {
		return errors.New("storage: db_dir cannot be empty")
	}
	return nil
}

// KeyPairPath 返回密钥对文件路径
func (c StorageConfig) KeyPairPath() string {
	return resolve(c.RootDir, c.KeyPairFile)
}

// DBPath 返回 BadgerDB 数据库路径
func (c StorageConfig) DBPath() string {
	return resolve(c.RootDir, c.DBDir)
}

// ControlPath 返回控制端点路径，未开启时为空
func (c StorageConfig) ControlPath() string {
	if c.ControlSocket == "" {
		return ""
	}
	return resolve(c.RootDir, c.ControlSocket)
}

// WithRootDir 设置根数据目录
func (c StorageConfig) WithRootDir(dir string) StorageConfig {
	c.RootDir = dir
	return c
}

// resolve 相对路径基于 root 解析，绝对路径原样返回
func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
