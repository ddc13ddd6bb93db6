package config

import (
	"errors"
)

// 证书文件名
const (
	CertFileName   = "cert.pem"
	KeyFileName    = "key.pem"
	CACertFileName = "ca-cert.pem"
	CAKeyFileName  = "ca-cert-key.pem"
)

// CertConfig 证书配置
//
// 证书目录下存放叶子证书 cert.pem/key.pem 与 CA 证书 ca-cert.pem/ca-cert-key.pem，
// 全部为 PEM 编码。
type CertConfig struct {
	// Dir 证书目录（相对 RootDir 或绝对路径）
	Dir string `json:"dir"`
}

// DefaultCertConfig 返回默认证书配置
func DefaultCertConfig() CertConfig {
	return CertConfig{Dir: "cert"}
}

// Validate 验证证书配置
func (c CertConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("cert: dir cannot be empty")
	}
	return nil
}

// CertPaths 证书文件路径集合
type CertPaths struct {
	Cert   string
	Key    string
	CACert string
	CAKey  string
}

// Paths 基于根目录返回证书文件路径
func (c CertConfig) Paths(root string) CertPaths {
	dir := resolve(root, c.Dir)
	return CertPaths{
		Cert:   resolve(dir, CertFileName),
		Key:    resolve(dir, KeyFileName),
		CACert: resolve(dir, CACertFileName),
		CAKey:  resolve(dir, CAKeyFileName),
	}
}
