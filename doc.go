// Package megaengine 是 MegaEngine 节点的宿主入口。
//
// MegaEngine 在互不信任的机器之间复制 Git 仓库。一个节点由以下部分组成：
//
//   - 自证明身份：Ed25519 密钥对派生出 did:key 形式的 NodeID
//   - 证书引导：本地 CA 签发叶子证书，节点间使用双向 TLS 的 QUIC 连接
//   - 路由表：记录对端地址，按 TTL 判定存活
//   - 同步循环：周期性请求外部仓库的 bundle，并记录本地仓库的引用变化
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	if err := cfg.ResolveRootDir(); err != nil { ... }
//
//	eng, err := megaengine.Start(ctx, cfg)
//	if err != nil { ... }
//	defer eng.Close()
//
//	fmt.Println(eng.Node().ID())
package megaengine
