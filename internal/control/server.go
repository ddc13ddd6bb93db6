package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/server"

	"github.com/dep2p/go-megaengine/internal/repo"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("control")

// 方法名
const (
	MethodRepoAdd  = "repo.Add"
	MethodRepoList = "repo.List"
)

// staleCheckTimeout 启动时检查旧端点的超时
const staleCheckTimeout = time.Second

// AddResult repo.Add 的结果
type AddResult struct {
	RepoID string `json:"repo_id"`
	Exists bool   `json:"exists,omitempty"`
}

// ============================================================================
//                              Server
// ============================================================================

// Server 控制端点服务
type Server struct {
	path  string
	repos *repo.Manager

	mu   sync.Mutex
	lst  net.Listener
	done chan struct{}
}

// NewServer 创建控制端点
func NewServer(path string, repos *repo.Manager) *Server {
	return &Server{path: path, repos: repos}
}

// Path 返回 socket 路径
func (s *Server) Path() string {
	return s.path
}

// Start 监听 socket 并在后台处理请求
//
// 有进程应答的旧 socket 返回 ErrEndpointInUse，无人应答的旧文件被替换。
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lst != nil {
		return nil
	}

	if err := removeStale(s.path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("创建控制端点目录失败: %w", err)
	}
	lst, err := net.Listen(jrpc2.Network(s.path), s.path)
	if err != nil {
		return fmt.Errorf("监听控制端点失败: %w", err)
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		lst.Close()
		return fmt.Errorf("设置控制端点权限失败: %w", err)
	}

	s.lst = lst
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		if err := server.Loop(lst, server.NewStatic(s.assigner()), nil); err != nil {
			logger.Warn("控制端点退出", "error", err)
		}
	}(s.done)

	logger.Info("控制端点已启动", "path", s.path)
	return nil
}

// Stop 关闭监听并删除 socket 文件
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	lst, done := s.lst, s.done
	s.lst, s.done = nil, nil
	s.mu.Unlock()
	if lst == nil {
		return nil
	}

	err := lst.Close()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("等待控制连接结束超时")
	}
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		logger.Debug("删除控制端点文件失败", "path", s.path, "error", rmErr)
	}
	return err
}

func (s *Server) assigner() handler.Map {
	return handler.Map{
		MethodRepoAdd:  handler.New(s.addRepo),
		MethodRepoList: handler.New(s.listRepos),
	}
}

// addRepo 通过节点的仓库管理器登记仓库，ID 已存在时 Exists 为 true
func (s *Server) addRepo(ctx context.Context, r types.Repo) (AddResult, error) {
	res := AddResult{RepoID: r.RepoID}
	err := s.repos.Register(ctx, &r)
	if errors.Is(err, repo.ErrRepoExists) {
		res.Exists = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

func (s *Server) listRepos(context.Context) ([]*types.Repo, error) {
	return s.repos.List(), nil
}

// removeStale 删除无人应答的旧 socket 文件
func removeStale(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	conn, err := net.DialTimeout(jrpc2.Network(path), path, staleCheckTimeout)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%w: %s", ErrEndpointInUse, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除旧控制端点失败: %w", err)
	}
	logger.Debug("已删除旧控制端点文件", "path", path)
	return nil
}
