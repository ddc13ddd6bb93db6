package tls

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// ParseCertificatesPEM 解析 PEM 数据中的全部证书
//
// 跳过非 CERTIFICATE 块，没有证书时返回 ErrNoCertificates。
func ParseCertificatesPEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != pemTypeCertificate {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("解析证书失败: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}
	return certs, nil
}

// ParsePrivateKeyPEM 解析 PEM 数据中的第一个可用私钥
//
// 依次尝试 PKCS8、SEC1(EC)、PKCS1(RSA)。没有可用私钥时返回 ErrNoPrivateKey。
func ParsePrivateKeyPEM(data []byte) (crypto.Signer, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoPrivateKey
		}
		if key := parsePrivateKeyDER(block.Bytes); key != nil {
			return key, nil
		}
	}
}

func parsePrivateKeyDER(der []byte) crypto.Signer {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		if signer, ok := key.(crypto.Signer); ok {
			return signer
		}
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key
	}
	return nil
}
