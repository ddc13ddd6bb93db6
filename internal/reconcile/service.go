package reconcile

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
//                              Service
// ============================================================================

// Service 在后台运行两个同步循环
type Service struct {
	bundle *BundleReconciler
	refs   *RefReconciler

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan error
}

// NewService 创建同步服务
func NewService(bundle *BundleReconciler, refs *RefReconciler) *Service {
	return &Service{bundle: bundle, refs: refs}
}

// Start 启动两个循环，立即返回
func (s *Service) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.bundle.Run(gctx) })
	g.Go(func() error { return s.refs.Run(gctx) })

	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() {
		s.done <- g.Wait()
	}()

	logger.Info("同步循环已启动",
		"bundleInterval", s.bundle.Interval().String(),
		"refsInterval", s.refs.Interval().String())
	return nil
}

// Stop 取消循环并等待当前处理结束
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("同步循环已停止")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
