package node

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dep2p/go-megaengine/internal/core/identity"
	"github.com/dep2p/go-megaengine/internal/core/transport/quic"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("core/node")

var (
	// ErrConnManagerAlreadySet 连接管理器只能设置一次
	ErrConnManagerAlreadySet = errors.New("connection manager already set")

	// ErrNilKeyPair 缺少密钥对
	ErrNilKeyPair = errors.New("nil keypair")

	// ErrNilConnManager 连接管理器为空
	ErrNilConnManager = errors.New("nil connection manager")
)

// ============================================================================
//                              Node
// ============================================================================

// Node 本地节点的运行时身份
//
// 连接管理器句柄从无到有只转换一次，之后只读，可被多个持有者并发访问。
type Node struct {
	info    types.NodeInfo
	keyPair *identity.KeyPair

	mu sync.RWMutex
	cm *quic.ConnectionManager
}

// New 由已加载的密钥对创建节点
func New(kp *identity.KeyPair, alias string, addrs []string, typ types.NodeType) (*Node, error) {
	if kp == nil {
		return nil, ErrNilKeyPair
	}
	return &Node{
		info:    types.NewNodeInfo(kp.NodeID(), alias, addrs, typ),
		keyPair: kp,
	}, nil
}

// ID 返回节点标识
func (n *Node) ID() types.NodeID {
	return n.info.ID
}

// Alias 返回节点别名
func (n *Node) Alias() string {
	return n.info.Alias
}

// Info 返回节点信息副本
func (n *Node) Info() types.NodeInfo {
	return n.info.Clone()
}

// KeyPair 返回节点密钥对
func (n *Node) KeyPair() *identity.KeyPair {
	return n.keyPair
}

// SignMessage 使用节点私钥签名
//
// 只读密钥对返回 identity.ErrNoSigningKey。
func (n *Node) SignMessage(msg []byte) ([]byte, error) {
	return n.keyPair.Sign(msg)
}

// SetConnectionManager 设置连接管理器，仅允许一次
func (n *Node) SetConnectionManager(cm *quic.ConnectionManager) error {
	if cm == nil {
		return ErrNilConnManager
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cm != nil {
		return ErrConnManagerAlreadySet
	}
	n.cm = cm
	return nil
}

// ConnectionManager 返回连接管理器，监听未启动时第二个返回值为 false
func (n *Node) ConnectionManager() (*quic.ConnectionManager, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cm, n.cm != nil
}

// StartListener 启动 QUIC 监听并设置连接管理器
func (n *Node) StartListener(cfg *quic.Config) (*quic.ConnectionManager, error) {
	if _, ok := n.ConnectionManager(); ok {
		return nil, ErrConnManagerAlreadySet
	}

	cm, err := quic.Listen(cfg)
	if err != nil {
		return nil, fmt.Errorf("启动监听失败: %w", err)
	}
	if err := n.SetConnectionManager(cm); err != nil {
		_ = cm.Close()
		return nil, err
	}

	logger.Info("节点监听已启动",
		"nodeID", n.ID().String(),
		"alias", n.info.Alias,
		"addr", cm.Addr().String())
	return cm, nil
}

// Close 关闭连接管理器
func (n *Node) Close() error {
	cm, ok := n.ConnectionManager()
	if !ok {
		return nil
	}
	return cm.Close()
}
