package tls

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/natefinch/atomic"

	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("core/security/tls")

// CA 主题字段，每次从持久化材料恢复时保持一致
const (
	caCommonName   = "MegaEngine CA"
	caOrganization = "MegaEngine"
	caCountry      = "CN"

	leafCommonName = "localhost"
)

// PEM 块类型
const (
	pemTypeCertificate = "CERTIFICATE"
	pemTypePrivateKey  = "PRIVATE KEY"
)

// 默认有效期
const (
	DefaultCAValidity   = 10 * 365 * 24 * time.Hour
	DefaultLeafValidity = 365 * 24 * time.Hour
	DefaultRenewBefore  = 7 * 24 * time.Hour
)

// leafSANs 叶子证书的主题备用名称
var (
	leafDNSNames = []string{"localhost"}
	leafIPs      = []net.IP{net.IPv4(127, 0, 0, 1), net.IPv4zero}
)

// CAKeyPath 由 CA 证书路径派生 CA 私钥路径
//
// ca-cert.pem → ca-cert-key.pem
func CAKeyPath(caCertPath string) string {
	return strings.TrimSuffix(caCertPath, ".pem") + "-key.pem"
}

// ============================================================================
//                              Bootstrapper
// ============================================================================

// Bootstrapper 证书引导器
//
// 每个证书/私钥对的状态：缺失 → 生成中 → 就绪。
// 只在启动阶段单线程调用，不支持并发。
type Bootstrapper struct {
	clock        clock.Clock
	caValidity   time.Duration
	leafValidity time.Duration
	renewBefore  time.Duration
}

// BootstrapOption 引导器选项
type BootstrapOption func(*Bootstrapper)

// WithClock 设置时钟
func WithClock(c clock.Clock) BootstrapOption {
	return func(b *Bootstrapper) { b.clock = c }
}

// WithLeafValidity 设置叶子证书有效期
func WithLeafValidity(d time.Duration) BootstrapOption {
	return func(b *Bootstrapper) { b.leafValidity = d }
}

// WithRenewBefore 设置叶子证书提前续签窗口
func WithRenewBefore(d time.Duration) BootstrapOption {
	return func(b *Bootstrapper) { b.renewBefore = d }
}

// NewBootstrapper 创建证书引导器
func NewBootstrapper(opts ...BootstrapOption) *Bootstrapper {
	b := &Bootstrapper{
		clock:        clock.New(),
		caValidity:   DefaultCAValidity,
		leafValidity: DefaultLeafValidity,
		renewBefore:  DefaultRenewBefore,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EnsureCertificates 使用默认参数确保证书就绪
func EnsureCertificates(certPath, keyPath, caCertPath string) error {
	return NewBootstrapper().Ensure(certPath, keyPath, caCertPath)
}

// Ensure 确保 CA 与叶子证书存在且可用
//
// 流程：
//  1. 叶子证书与私钥只存在其一时，删除两者
//  2. CA 证书或私钥缺失时，生成自签名 CA 并持久化
//  3. CA 已存在时，从 PEM 恢复 CA 签名上下文
//  4. 叶子缺失、CA 新生成、叶子无法由 CA 验证或即将过期时，签发新叶子证书
//
// 文件已就绪时再次调用不会改写任何文件。
func (b *Bootstrapper) Ensure(certPath, keyPath, caCertPath string) error {
	caKeyPath := CAKeyPath(caCertPath)

	certExists, keyExists := fileExists(certPath), fileExists(keyPath)
	if certExists != keyExists {
		logger.Warn("叶子证书不完整，删除后重新生成", "cert", certPath, "key", keyPath)
		if err := removeIfExists(certPath, keyPath); err != nil {
			return err
		}
		certExists, keyExists = false, false
	}

	var (
		ca        *authority
		caCreated bool
		err       error
	)
	if fileExists(caCertPath) && fileExists(caKeyPath) {
		ca, err = loadAuthority(caCertPath, caKeyPath)
		if err != nil {
			return err
		}
	} else {
		ca, err = b.generateAuthority()
		if err != nil {
			return err
		}
		if err := ca.persist(caCertPath, caKeyPath); err != nil {
			return err
		}
		caCreated = true
		logger.Info("已生成 CA 证书", "path", caCertPath)
	}

	switch {
	case !certExists || !keyExists:
		// 叶子缺失
	case caCreated:
		logger.Info("CA 已重新生成，重新签发叶子证书")
	default:
		reason := b.leafProblem(certPath, keyPath, ca)
		if reason == "" {
			logger.Debug("证书已就绪", "cert", certPath)
			return nil
		}
		logger.Warn("叶子证书不可用，重新签发", "reason", reason)
	}

	if err := b.issueLeaf(ca, certPath, keyPath); err != nil {
		return err
	}
	logger.Info("已签发叶子证书", "path", certPath)
	return nil
}

// leafProblem 检查现有叶子证书，返回需要重新签发的原因，可用时返回空串
func (b *Bootstrapper) leafProblem(certPath, keyPath string, ca *authority) string {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return "读取证书失败"
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return "读取私钥失败"
	}
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return "证书与私钥不匹配"
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return "证书无法解析"
	}
	if err := leaf.CheckSignatureFrom(ca.cert); err != nil {
		return "证书不是由当前 CA 签发"
	}
	if b.clock.Now().Add(b.renewBefore).After(leaf.NotAfter) {
		return "证书即将过期"
	}
	return ""
}

// ============================================================================
//                              CA 签名上下文
// ============================================================================

// authority CA 签名上下文
type authority struct {
	cert *x509.Certificate
	key  crypto.Signer
}

// generateAuthority 生成自签名 CA
func (b *Bootstrapper) generateAuthority() (*authority, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: 生成 CA 密钥: %w", ErrCertificateCrypto, err)
	}
	serial, err := randomSerial()
	if err != nil {
		return nil, err
	}

	now := b.clock.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               caSubject(),
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(b.caValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            -1,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("%w: 创建 CA 证书: %w", ErrCertificateCrypto, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析 CA 证书: %w", ErrCertificateCrypto, err)
	}
	return &authority{cert: cert, key: key}, nil
}

// loadAuthority 从 PEM 文件恢复 CA 签名上下文
func loadAuthority(certPath, keyPath string) (*authority, error) {
	certPEM, err := readFile(certPath)
	if err != nil {
		return nil, err
	}
	keyPEM, err := readFile(keyPath)
	if err != nil {
		return nil, err
	}

	certs, err := ParseCertificatesPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: CA 证书 %s: %w", ErrCertificateCrypto, certPath, err)
	}
	key, err := ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: CA 私钥 %s: %w", ErrCertificateCrypto, keyPath, err)
	}

	cert := certs[0]
	if !cert.IsCA {
		return nil, fmt.Errorf("%w: %s 不是 CA 证书", ErrCertificateCrypto, certPath)
	}
	pub, ok := key.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !pub.Equal(cert.PublicKey) {
		return nil, fmt.Errorf("%w: CA 私钥与证书不匹配", ErrCertificateCrypto)
	}
	if !bytes.Equal(cert.RawSubject, cert.RawIssuer) {
		return nil, fmt.Errorf("%w: CA 证书不是自签名", ErrCertificateCrypto)
	}
	return &authority{cert: cert, key: key}, nil
}

// persist 写入 CA 证书与私钥
func (a *authority) persist(certPath, keyPath string) error {
	keyDER, err := x509.MarshalPKCS8PrivateKey(a.key)
	if err != nil {
		return fmt.Errorf("%w: 编码 CA 私钥: %w", ErrCertificateCrypto, err)
	}
	if err := writePEM(certPath, pemTypeCertificate, a.cert.Raw, 0644); err != nil {
		return err
	}
	return writePEM(keyPath, pemTypePrivateKey, keyDER, 0600)
}

// issueLeaf 生成叶子密钥对并由 CA 签名后写入
func (b *Bootstrapper) issueLeaf(ca *authority, certPath, keyPath string) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("%w: 生成叶子密钥: %w", ErrCertificateCrypto, err)
	}
	serial, err := randomSerial()
	if err != nil {
		return err
	}

	now := b.clock.Now()
	notAfter := now.Add(b.leafValidity)
	if notAfter.After(ca.cert.NotAfter) {
		notAfter = ca.cert.NotAfter
	}
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: leafCommonName},
		DNSNames:     leafDNSNames,
		IPAddresses:  leafIPs,
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		return fmt.Errorf("%w: 签发叶子证书: %w", ErrCertificateCrypto, err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("%w: 编码叶子私钥: %w", ErrCertificateCrypto, err)
	}

	if err := writePEM(certPath, pemTypeCertificate, der, 0644); err != nil {
		return err
	}
	return writePEM(keyPath, pemTypePrivateKey, keyDER, 0600)
}

func caSubject() pkix.Name {
	return pkix.Name{
		CommonName:   caCommonName,
		Organization: []string{caOrganization},
		Country:      []string{caCountry},
	}
}

func randomSerial() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: 生成序列号: %w", ErrCertificateCrypto, err)
	}
	return serial, nil
}

// ============================================================================
//                              证书信息
// ============================================================================

// CertificateInfo 证书摘要信息
type CertificateInfo struct {
	Subject   string
	Issuer    string
	NotBefore time.Time
	NotAfter  time.Time
	DNSNames  []string
	IPs       []net.IP
	IsCA      bool
}

// ReadCertificateInfo 读取 PEM 证书文件中首个证书的摘要
func ReadCertificateInfo(path string) (*CertificateInfo, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	certs, err := ParseCertificatesPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCertificateCrypto, err)
	}
	c := certs[0]
	return &CertificateInfo{
		Subject:   c.Subject.String(),
		Issuer:    c.Issuer.String(),
		NotBefore: c.NotBefore,
		NotAfter:  c.NotAfter,
		DNSNames:  c.DNSNames,
		IPs:       c.IPAddresses,
		IsCA:      c.IsCA,
	}, nil
}

// ============================================================================
//                              文件操作
// ============================================================================

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取 %s: %w", ErrCertificateIO, path, err)
	}
	return data, nil
}

func removeIfExists(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: 删除 %s: %w", ErrCertificateIO, p, err)
		}
	}
	return nil
}

// writePEM 原子写入 PEM 文件
func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: 创建目录: %w", ErrCertificateIO, err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: 写入 %s: %w", ErrCertificateIO, path, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("%w: 设置权限 %s: %w", ErrCertificateIO, path, err)
	}
	return nil
}
