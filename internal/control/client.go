package control

import (
	"context"
	"fmt"
	"net"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"

	"github.com/dep2p/go-megaengine/pkg/types"
)

// Client 控制端点客户端
type Client struct {
	cli *jrpc2.Client
}

// Dial 连接运行中节点的控制端点
//
// socket 不存在或无人应答时返回 ErrNoEndpoint。
func Dial(ctx context.Context, path string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, jrpc2.Network(path), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEndpoint, err)
	}
	return &Client{cli: jrpc2.NewClient(channel.RawJSON(conn, conn), nil)}, nil
}

// AddRepo 请求节点登记仓库
func (c *Client) AddRepo(ctx context.Context, r *types.Repo) (AddResult, error) {
	var res AddResult
	if err := c.cli.CallResult(ctx, MethodRepoAdd, r, &res); err != nil {
		return AddResult{}, err
	}
	return res, nil
}

// ListRepos 返回节点登记的全部仓库
func (c *Client) ListRepos(ctx context.Context) ([]*types.Repo, error) {
	var repos []*types.Repo
	if err := c.cli.CallResult(ctx, MethodRepoList, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.cli.Close()
}
