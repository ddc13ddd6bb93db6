// Package control 提供运行中节点的本地控制端点
//
// 节点启动后在 <root>/control.sock 上提供 JSON-RPC 服务，命令行在节点
// 运行期间通过它登记和列出仓库，避免与节点争用注册表数据库的目录锁。
// 端点只监听 unix socket，文件权限为 0600。
package control
