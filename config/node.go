package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// NodeConfig 本地节点配置
type NodeConfig struct {
	// Alias 节点别名
	Alias string `json:"alias"`

	// ListenAddr QUIC 监听地址（host:port）
	ListenAddr string `json:"listen_addr"`

	// Type 节点类型（normal|relay）
	Type types.NodeType `json:"node_type"`

	// AdvertiseAddrs 对外公布的地址，为空时使用 ListenAddr
	AdvertiseAddrs []string `json:"advertise_addrs,omitempty"`
}

// DefaultNodeConfig 返回默认节点配置
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Alias:      "mega-node",
		ListenAddr: "0.0.0.0:9000",
		Type:       types.NodeTypeNormal,
	}
}

// Validate 验证节点配置
func (c NodeConfig) Validate() error {
	if c.Alias == "" {
		return errors.New("node: alias cannot be empty")
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("node: invalid listen_addr %q: %w", c.ListenAddr, err)
	}
	return nil
}

// Addresses 返回对外公布的地址列表
func (c NodeConfig) Addresses() []string {
	if len(c.AdvertiseAddrs) > 0 {
		return append([]string(nil), c.AdvertiseAddrs...)
	}
	return []string{c.ListenAddr}
}
