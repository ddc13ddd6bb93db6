// Package repo 实现仓库注册表。
//
// Store 基于存储引擎持久化仓库条目和引用快照，是同步循环使用的
// interfaces.Registry 实现。Manager 在其上维护内存索引（按 ID、按路径），
// 供命令行和宿主注册、列举仓库。
//
// 仓库 ID 由根提交和创建者公钥派生：
//
//	did:repo:<base58btc(sha256(root || pubkey))>
package repo
