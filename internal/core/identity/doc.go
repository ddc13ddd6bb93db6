// Package identity 管理节点的 Ed25519 密钥材料
//
// # 核心功能
//
//   - 密钥对生成：GenerateKeyPair
//   - 从私钥种子或公钥重建：KeyPairFromSigningKeyBytes / KeyPairFromVerifyingKeyBytes
//   - 从 NodeID 恢复仅验证密钥对：KeyPairFromNodeID
//   - 签名与验证：Sign / Verify
//   - 持久化：SaveKeyPair / LoadKeyPair（JSON，原子写入，0600）
//
// # 仅验证密钥对
//
// 私钥是可选的。仅含公钥的密钥对调用 Sign 返回 ErrNoSigningKey，
// 调用方应将该节点视为只读身份。
//
//	kp, _ := identity.KeyPairFromNodeID(id)
//	if _, err := kp.Sign(msg); errors.Is(err, identity.ErrNoSigningKey) {
//	    // 只能验证
//	}
//
// # Fx 模块
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    identity.Module(),
//	    fx.Invoke(func(kp *identity.KeyPair) { ... }),
//	)
package identity
