package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// DefaultServerName 客户端校验服务端证书时使用的名称
//
// 所有叶子证书都带有 localhost SAN，按地址拨号时统一以此校验。
const DefaultServerName = "localhost"

// ConfigBuilder 双向 TLS 配置构建器
//
// 服务端要求并校验客户端证书，客户端信任同一 CA 并出示自身叶子证书。
type ConfigBuilder struct {
	certPath   string
	keyPath    string
	caCertPath string

	minVersion uint16
	nextProtos []string
	serverName string
}

// NewConfigBuilder 创建配置构建器
func NewConfigBuilder(certPath, keyPath, caCertPath string) *ConfigBuilder {
	return &ConfigBuilder{
		certPath:   certPath,
		keyPath:    keyPath,
		caCertPath: caCertPath,
		minVersion: tls.VersionTLS13,
		serverName: DefaultServerName,
	}
}

// WithMinVersion 设置最低 TLS 版本
func (b *ConfigBuilder) WithMinVersion(version uint16) *ConfigBuilder {
	b.minVersion = version
	return b
}

// WithNextProtos 设置 ALPN 协议
func (b *ConfigBuilder) WithNextProtos(protos ...string) *ConfigBuilder {
	b.nextProtos = append([]string(nil), protos...)
	return b
}

// WithServerName 设置客户端校验的服务端名称
func (b *ConfigBuilder) WithServerName(name string) *ConfigBuilder {
	b.serverName = name
	return b
}

// LoadCertificate 加载叶子证书链与私钥
func (b *ConfigBuilder) LoadCertificate() (tls.Certificate, error) {
	certPEM, err := readFile(b.certPath)
	if err != nil {
		return tls.Certificate{}, err
	}
	keyPEM, err := readFile(b.keyPath)
	if err != nil {
		return tls.Certificate{}, err
	}

	certs, err := ParseCertificatesPEM(certPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("证书 %s: %w", b.certPath, err)
	}
	key, err := ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("私钥 %s: %w", b.keyPath, err)
	}

	chain := make([][]byte, 0, len(certs))
	for _, c := range certs {
		chain = append(chain, c.Raw)
	}
	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        certs[0],
	}, nil
}

// LoadCAPool 加载 CA 根证书池
func (b *ConfigBuilder) LoadCAPool() (*x509.CertPool, error) {
	data, err := readFile(b.caCertPath)
	if err != nil {
		return nil, err
	}
	certs, err := ParseCertificatesPEM(data)
	if err != nil {
		return nil, fmt.Errorf("CA 证书 %s: %w", b.caCertPath, err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(certs[0])
	return pool, nil
}

// BuildServerConfig 构建服务端 TLS 配置
//
// 未出示有效客户端证书的连接在握手阶段被拒绝。
func (b *ConfigBuilder) BuildServerConfig() (*tls.Config, error) {
	cert, err := b.LoadCertificate()
	if err != nil {
		return nil, err
	}
	pool, err := b.LoadCAPool()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    pool,
		MinVersion:   b.minVersion,
		NextProtos:   b.nextProtos,
	}, nil
}

// BuildClientConfig 构建客户端 TLS 配置
//
// 不设置 ClientSessionCache，因而不会恢复会话或发送 0-RTT 数据。
func (b *ConfigBuilder) BuildClientConfig() (*tls.Config, error) {
	cert, err := b.LoadCertificate()
	if err != nil {
		return nil, err
	}
	pool, err := b.LoadCAPool()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ServerName:   b.serverName,
		MinVersion:   b.minVersion,
		NextProtos:   b.nextProtos,
	}, nil
}
