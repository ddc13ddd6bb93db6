// Package bundle 实现节点间的 bundle 请求协议。
//
// 请求方在 QUIC 流上发送一条 JSON 请求，仓库所有者校验仓库是否为本地源仓库
// 后回复接受或拒绝。协议只完成请求与应答，bundle 内容不经过本协议传输。
//
// 协议标识为 /megaengine/bundle/1。
package bundle
