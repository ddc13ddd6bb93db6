// Package quic 实现基于双向 TLS 的 QUIC 传输
//
// # 配置
//
// Config 从证书引导生成的文件构建两组不可变配置：
//
//   - 服务端：要求并以本地 CA 校验客户端证书，声明固定 ALPN，
//     空闲超时 300s、保活 30s
//   - 客户端：信任同一 CA，出示本节点叶子证书，不启用 0-RTT
//
// 证书或私钥缺失、格式错误或不含可用条目时构建失败。
//
// # 连接管理
//
//	cm, err := quic.Listen(quic.NewConfig("0.0.0.0:9000", cert, key, ca))
//	cm.SetStreamHandler("/megaengine/bundle/1", handler)
//	s, err := cm.OpenStream(ctx, "10.0.0.2:9000", "/megaengine/bundle/1")
//
// 每条流以协议标识加换行开头，入站流按协议分发。
package quic
