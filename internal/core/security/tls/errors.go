// Package tls 实现证书引导与双向 TLS 配置
package tls

import "errors"

// 证书相关错误
var (
	// ErrCertificateIO 证书文件读写失败
	ErrCertificateIO = errors.New("tls: certificate io error")

	// ErrCertificateCrypto 证书或密钥生成、解析、签名失败
	ErrCertificateCrypto = errors.New("tls: certificate crypto error")

	// ErrNoCertificates PEM 中没有可用证书
	ErrNoCertificates = errors.New("tls: no certificates found")

	// ErrNoPrivateKey PEM 中没有可用私钥
	ErrNoPrivateKey = errors.New("tls: no private key found")
)
