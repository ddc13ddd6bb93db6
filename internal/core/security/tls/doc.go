// Package tls 实现证书引导与双向 TLS 配置
//
// # 证书引导
//
// 证书目录中有两对文件：
//
//	cert.pem / key.pem              叶子证书（CN=localhost，SAN: localhost, 127.0.0.1, 0.0.0.0）
//	ca-cert.pem / ca-cert-key.pem   自签名 CA（CN=MegaEngine CA, O=MegaEngine, C=CN）
//
// EnsureCertificates 在启动阶段调用一次：
//
//	if err := tls.EnsureCertificates(paths.Cert, paths.Key, paths.CACert); err != nil {
//	    return err // 证书错误终止启动
//	}
//
// 只存在一半的叶子证书对会被删除重建；CA 缺失时重新生成并重新签发叶子；
// 文件完整时重复调用不改写任何文件。所有密钥为 ECDSA P-256，以 PKCS8 PEM 保存。
//
// # 双向 TLS
//
// ConfigBuilder 从同一组文件构建服务端与客户端 tls.Config：
//
//	b := tls.NewConfigBuilder(paths.Cert, paths.Key, paths.CACert).WithNextProtos("megaengine/1")
//	serverConf, err := b.BuildServerConfig()
//	clientConf, err := b.BuildClientConfig()
//
// 私钥按 PKCS8、SEC1、PKCS1 的顺序尝试解析。
package tls
