package quic

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-megaengine/config"
	securitytls "github.com/dep2p/go-megaengine/internal/core/security/tls"
)

// 默认参数
const (
	DefaultALPN            = "megaengine/1"
	DefaultIdleTimeout     = 300 * time.Second
	DefaultKeepAlivePeriod = 30 * time.Second
	DefaultDialTimeout     = 10 * time.Second
)

// Config QUIC 传输配置
//
// 由证书文件构建不可变的服务端与客户端配置。
type Config struct {
	BindAddr   string
	CertPath   string
	KeyPath    string
	CACertPath string

	ALPN            []string
	IdleTimeout     time.Duration
	KeepAlivePeriod time.Duration
	DialTimeout     time.Duration
}

// NewConfig 使用默认参数创建配置
func NewConfig(bindAddr, certPath, keyPath, caCertPath string) *Config {
	return &Config{
		BindAddr:        bindAddr,
		CertPath:        certPath,
		KeyPath:         keyPath,
		CACertPath:      caCertPath,
		ALPN:            []string{DefaultALPN},
		IdleTimeout:     DefaultIdleTimeout,
		KeepAlivePeriod: DefaultKeepAlivePeriod,
		DialTimeout:     DefaultDialTimeout,
	}
}

// FromConfig 从全局配置创建 QUIC 配置
func FromConfig(cfg *config.Config) *Config {
	paths := cfg.CertPaths()
	c := NewConfig(cfg.Node.ListenAddr, paths.Cert, paths.Key, paths.CACert)
	c.ALPN = []string{cfg.Transport.ALPN}
	c.IdleTimeout = cfg.Transport.IdleTimeout.Duration()
	c.KeepAlivePeriod = cfg.Transport.KeepAlivePeriod.Duration()
	c.DialTimeout = cfg.Transport.DialTimeout.Duration()
	return c
}

func (c *Config) tlsBuilder() *securitytls.ConfigBuilder {
	return securitytls.NewConfigBuilder(c.CertPath, c.KeyPath, c.CACertPath).
		WithNextProtos(c.ALPN...)
}

// ServerTLSConfig 构建服务端 TLS 配置（要求并校验客户端证书）
func (c *Config) ServerTLSConfig() (*tls.Config, error) {
	conf, err := c.tlsBuilder().BuildServerConfig()
	if err != nil {
		return nil, fmt.Errorf("构建服务端 TLS 配置失败: %w", err)
	}
	return conf, nil
}

// ClientTLSConfig 构建客户端 TLS 配置（出示叶子证书，不使用会话恢复）
func (c *Config) ClientTLSConfig() (*tls.Config, error) {
	conf, err := c.tlsBuilder().BuildClientConfig()
	if err != nil {
		return nil, fmt.Errorf("构建客户端 TLS 配置失败: %w", err)
	}
	return conf, nil
}

// ServerQUICConfig 服务端 QUIC 参数
func (c *Config) ServerQUICConfig() *quic.Config {
	return c.quicConfig()
}

// ClientQUICConfig 客户端 QUIC 参数
func (c *Config) ClientQUICConfig() *quic.Config {
	return c.quicConfig()
}

// quicConfig 空闲超时与保活用于发现静默断开的对端，不启用 0-RTT
func (c *Config) quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:        c.IdleTimeout,
		KeepAlivePeriod:       c.KeepAlivePeriod,
		HandshakeIdleTimeout:  c.DialTimeout,
		MaxIncomingStreams:    256,
		MaxIncomingUniStreams: -1,
		Allow0RTT:             false,
	}
}

// Settings 已构建的传输配置
type Settings struct {
	ServerTLS  *tls.Config
	ClientTLS  *tls.Config
	ServerQUIC *quic.Config
	ClientQUIC *quic.Config
}

// Build 一次性构建服务端与客户端配置
//
// 证书或私钥缺失、格式错误或为空时返回错误。
func (c *Config) Build() (*Settings, error) {
	serverTLS, err := c.ServerTLSConfig()
	if err != nil {
		return nil, err
	}
	clientTLS, err := c.ClientTLSConfig()
	if err != nil {
		return nil, err
	}
	return &Settings{
		ServerTLS:  serverTLS,
		ClientTLS:  clientTLS,
		ServerQUIC: c.ServerQUICConfig(),
		ClientQUIC: c.ClientQUICConfig(),
	}, nil
}
