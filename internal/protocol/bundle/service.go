package bundle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dep2p/go-megaengine/internal/core/node"
	"github.com/dep2p/go-megaengine/internal/core/peerstore"
	"github.com/dep2p/go-megaengine/internal/core/transport/quic"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("protocol/bundle")

// DefaultRequestTimeout 单次请求超时
const DefaultRequestTimeout = 15 * time.Second

// RepoLookup 按 ID 查询本地仓库
type RepoLookup interface {
	GetRepo(ctx context.Context, repoID string) (*types.Repo, error)
}

// ============================================================================
//                              Service
// ============================================================================

// Service bundle 请求服务
//
// 作为客户端向仓库所有者发送请求，作为服务端应答本地源仓库的请求。
// bundle 字节传输不在本协议内。
type Service struct {
	node    *node.Node
	routing *peerstore.Table
	repos   RepoLookup
	timeout time.Duration

	mu      sync.Mutex
	started bool
}

// Option 服务选项
type Option func(*Service)

// WithRequestTimeout 设置单次请求超时
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New 创建 bundle 服务
func New(n *node.Node, routing *peerstore.Table, repos RepoLookup, opts ...Option) *Service {
	s := &Service{
		node:    n,
		routing: routing,
		repos:   repos,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start 在连接管理器上注册协议处理函数
func (s *Service) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	cm, ok := s.node.ConnectionManager()
	if !ok {
		return ErrNoConnectionManager
	}
	if err := cm.SetStreamHandler(ProtocolID, s.handleStream); err != nil {
		return err
	}
	s.started = true
	logger.Info("bundle 服务已启动", "protocol", ProtocolID)
	return nil
}

// Stop 注销协议处理函数
func (s *Service) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	if cm, ok := s.node.ConnectionManager(); ok {
		cm.RemoveStreamHandler(ProtocolID)
	}
	s.started = false
	return nil
}

// RequestBundle 向仓库所有者请求 bundle
//
// 依次尝试路由表中的每个地址，任一地址应答即返回。
func (s *Service) RequestBundle(ctx context.Context, owner types.NodeID, repoID string) error {
	if owner.Equal(s.node.ID()) {
		return ErrSelfRequest
	}
	cm, ok := s.node.ConnectionManager()
	if !ok {
		return ErrNoConnectionManager
	}
	addrs, err := s.routing.Addresses(owner)
	if err != nil || len(addrs) == 0 {
		return fmt.Errorf("%w: %s", ErrOwnerUnknown, owner.ShortString())
	}

	req := &Request{
		RequestID: uuid.New().String(),
		RepoID:    repoID,
		Requester: s.node.ID(),
		Timestamp: time.Now().Unix(),
	}

	var errs error
	for _, addr := range addrs {
		err := s.send(ctx, cm, addr, req)
		if err == nil {
			s.routing.MarkAlive(owner)
			logger.Info("bundle 请求已被接受",
				"repo", types.LastSegment(repoID),
				"owner", owner.ShortString(),
				"requestID", req.RequestID)
			return nil
		}
		if errors.Is(err, ErrRejected) {
			return err
		}
		logger.Debug("bundle 请求失败", "addr", addr, "error", err)
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", addr, err))
	}
	return errs
}

// send 在一个新流上完成一次请求应答
func (s *Service) send(ctx context.Context, cm *quic.ConnectionManager, addr string, req *Request) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	str, err := cm.OpenStream(ctx, addr, ProtocolID)
	if err != nil {
		return err
	}
	defer str.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = str.SetDeadline(deadline)
	}

	if err := writeMessage(str, req); err != nil {
		str.Reset()
		return fmt.Errorf("发送请求失败: %w", err)
	}

	var resp Response
	if err := readMessage(str, &resp); err != nil {
		str.Reset()
		return err
	}
	if resp.RequestID != req.RequestID {
		return fmt.Errorf("%w: request id mismatch", ErrInvalidMessage)
	}
	if !resp.Accepted {
		return fmt.Errorf("%w: %s", ErrRejected, resp.Reason)
	}
	return nil
}

// handleStream 应答入站请求
func (s *Service) handleStream(ctx context.Context, str *quic.Stream) {
	_ = str.SetDeadline(time.Now().Add(s.timeout))

	var req Request
	if err := readMessage(str, &req); err != nil {
		logger.Debug("读取 bundle 请求失败", "remote", str.RemoteAddr().String(), "error", err)
		str.Reset()
		return
	}

	resp := s.answer(ctx, &req)
	if err := writeMessage(str, &resp); err != nil {
		logger.Debug("发送 bundle 应答失败", "remote", str.RemoteAddr().String(), "error", err)
	}
}

// answer 只接受本地存在且非外部的仓库
func (s *Service) answer(ctx context.Context, req *Request) Response {
	resp := Response{RequestID: req.RequestID}
	if err := req.Validate(); err != nil {
		resp.Reason = err.Error()
		return resp
	}

	r, err := s.repos.GetRepo(ctx, req.RepoID)
	switch {
	case err != nil:
		resp.Reason = "unknown repository"
	case r.IsExternal:
		resp.Reason = "not the origin of this repository"
	default:
		resp.Accepted = true
	}

	logger.Info("收到 bundle 请求",
		"repo", types.LastSegment(req.RepoID),
		"requester", req.Requester.ShortString(),
		"accepted", resp.Accepted)
	return resp
}

var _ interfaces.BundleRequester = (*Service)(nil)
