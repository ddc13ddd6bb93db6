// Package node 定义本地节点的运行时身份。
//
// Node 持有节点信息（标识、别名、地址、类型）、密钥对，以及在监听启动后
// 才出现的 QUIC 连接管理器。连接管理器只能设置一次，之后对并发读取安全。
package node
