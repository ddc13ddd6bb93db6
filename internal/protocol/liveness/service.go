package liveness

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/multierr"

	"github.com/dep2p/go-megaengine/internal/core/node"
	"github.com/dep2p/go-megaengine/internal/core/peerstore"
	"github.com/dep2p/go-megaengine/internal/core/transport/quic"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("protocol/liveness")

var pingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "megaengine",
	Subsystem: "liveness",
	Name:      "pings_total",
	Help:      "Number of outbound pings by result.",
}, []string{"result"})

// Service 存活探测服务
type Service struct {
	node    *node.Node
	routing *peerstore.Table
	config  *Config

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	statuses *lru.Cache[types.NodeID, *peerStatus]
}

// New 创建存活探测服务
func New(n *node.Node, routing *peerstore.Table, opts ...Option) *Service {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	// MaxTracked 由选项保证为正数，New 不会失败
	statuses, _ := lru.New[types.NodeID, *peerStatus](cfg.MaxTracked)
	return &Service{
		node:     n,
		routing:  routing,
		config:   cfg,
		statuses: statuses,
	}
}

// Start 注册 ping 应答并启动探测循环
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
	if err := cm.SetStreamHandler(ProtocolID, s.handlePing); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.started = true
	if s.config.Interval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.probeLoop(ctx)
		}()
	}

	logger.Info("存活探测服务已启动", "interval", s.config.Interval.String())
	return nil
}

// Stop 停止探测循环并注销 ping 应答
func (s *Service) Stop(_ context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	if cm, ok := s.node.ConnectionManager(); ok {
		cm.RemoveStreamHandler(ProtocolID)
	}
	logger.Info("存活探测服务已停止")
	return nil
}

// Ping 探测节点并返回 RTT
//
// 依次尝试路由表中的地址，成功时刷新路由条目。
func (s *Service) Ping(ctx context.Context, id types.NodeID) (time.Duration, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return 0, ErrNotStarted
	}

	cm, ok := s.node.ConnectionManager()
	if !ok {
		return 0, ErrNoConnectionManager
	}
	addrs, err := s.routing.Addresses(id)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPeer, id.ShortString())
	}

	var errs error
	for _, addr := range addrs {
		rtt, err := s.pingAddr(ctx, cm, addr)
		if err == nil {
			s.routing.MarkAlive(id)
			s.record(id, rtt, true)
			pingsTotal.WithLabelValues("success").Inc()
			logger.Debug("Ping 成功", "peer", id.ShortString(), "rtt", rtt)
			return rtt, nil
		}
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", addr, err))
	}

	s.record(id, 0, false)
	pingsTotal.WithLabelValues("failure").Inc()
	logger.Debug("Ping 失败", "peer", id.ShortString(), "error", errs)
	return 0, errs
}

// pingAddr 在一个新流上完成一次回显
func (s *Service) pingAddr(ctx context.Context, cm *quic.ConnectionManager, addr string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	payload, err := newPayload()
	if err != nil {
		return 0, err
	}

	start := s.config.Clock.Now()
	str, err := cm.OpenStream(ctx, addr, ProtocolID)
	if err != nil {
		return 0, err
	}
	defer str.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = str.SetDeadline(deadline)
	}

	if _, err := str.Write(payload); err != nil {
		str.Reset()
		return 0, err
	}
	pong, err := readPayload(str)
	if err != nil {
		str.Reset()
		return 0, err
	}
	if !bytes.Equal(pong, payload) {
		return 0, ErrPayloadMismatch
	}
	return s.config.Clock.Since(start), nil
}

// handlePing 回显载荷
func (s *Service) handlePing(_ context.Context, str *quic.Stream) {
	_ = str.SetDeadline(time.Now().Add(s.config.Timeout))
	payload, err := readPayload(str)
	if err != nil {
		logger.Debug("读取 ping 失败", "remote", str.RemoteAddr().String(), "error", err)
		str.Reset()
		return
	}
	if _, err := str.Write(payload); err != nil {
		logger.Debug("回显 ping 失败", "remote", str.RemoteAddr().String(), "error", err)
	}
}

// probeLoop 周期探测路由表中的全部节点
func (s *Service) probeLoop(ctx context.Context) {
	ticker := s.config.Clock.Ticker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ProbeAll(ctx)
		}
	}
}

// ProbeAll 探测路由表中的全部节点，返回成功数
//
// 探测前先丢弃已不在路由表中的节点统计。
func (s *Service) ProbeAll(ctx context.Context) int {
	self := s.node.ID()
	entries := s.routing.List()
	s.prune(entries)

	alive := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.NodeID.Equal(self) {
			continue
		}
		if _, err := s.Ping(ctx, entry.NodeID); err == nil {
			alive++
		}
	}
	return alive
}

// Status 返回节点的探测统计
func (s *Service) Status(id types.NodeID) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, ok := s.statuses.Peek(id)
	if !ok {
		return Status{}, false
	}
	return ps.snapshot(), true
}

// IsAlive 节点最近是否探测成功
func (s *Service) IsAlive(id types.NodeID) bool {
	st, ok := s.Status(id)
	return ok && st.Alive
}

// record 更新探测统计
func (s *Service) record(id types.NodeID, rtt time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps, exists := s.statuses.Get(id)
	if !exists {
		ps = &peerStatus{}
		s.statuses.Add(id, ps)
	}
	if ok {
		ps.recordSuccess(s.config.Clock.Now(), rtt, s.config.RTTWindowSize)
	} else {
		ps.recordFailure(s.config.FailThreshold)
	}
}

// Forget 丢弃节点的探测统计
func (s *Service) Forget(id types.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses.Remove(id)
}

// Tracked 返回当前保留统计的节点数
func (s *Service) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses.Len()
}

// prune 丢弃不在 entries 中的节点统计
func (s *Service) prune(entries []peerstore.NodeRouting) {
	known := make(map[types.NodeID]struct{}, len(entries))
	for _, e := range entries {
		known[e.NodeID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.statuses.Keys() {
		if _, ok := known[id]; !ok {
			s.statuses.Remove(id)
		}
	}
}
