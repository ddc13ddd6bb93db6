package reconcile

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-megaengine/pkg/interfaces"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("reconcile")

// DefaultBundleInterval bundle 同步周期
const DefaultBundleInterval = 30 * time.Second

// BundleReconciler 为外部仓库补齐 bundle
type BundleReconciler struct {
	registry  interfaces.Registry
	requester interfaces.BundleRequester
	clock     clock.Clock
	interval  time.Duration
}

// NewBundleReconciler 创建 bundle 同步循环
func NewBundleReconciler(registry interfaces.Registry, requester interfaces.BundleRequester, opts ...Option) *BundleReconciler {
	o := applyOptions(DefaultBundleInterval, opts)
	return &BundleReconciler{
		registry:  registry,
		requester: requester,
		clock:     o.clock,
		interval:  o.interval,
	}
}

// Interval 返回同步周期
func (r *BundleReconciler) Interval() time.Duration {
	return r.interval
}

// Run 周期执行 RunOnce 直到 ctx 取消
func (r *BundleReconciler) Run(ctx context.Context) error {
	return runEvery(ctx, r.clock, r.interval, func(ctx context.Context) {
		r.RunOnce(ctx)
	})
}

// RunOnce 执行一轮 bundle 同步，返回本轮成功发出的请求数
func (r *BundleReconciler) RunOnce(ctx context.Context) int {
	ticksTotal.WithLabelValues(loopBundle).Inc()
	logger.Debug("开始检查外部仓库 bundle")

	repos, err := r.registry.ListRepos(ctx)
	if err != nil {
		errorsTotal.WithLabelValues(loopBundle, stageList).Inc()
		logger.Warn("列出仓库失败", "error", err)
		return 0
	}

	requested := 0
	for _, repo := range repos {
		if ctx.Err() != nil {
			return requested
		}
		if !repo.IsExternal {
			continue
		}
		if repo.HasBundle() {
			logger.Debug("外部仓库已有 bundle", "repo", repo.RepoID, "bundle", repo.BundlePath)
			continue
		}

		owner, err := types.ParseNodeID(repo.Description.Creator)
		if err != nil {
			errorsTotal.WithLabelValues(loopBundle, stageParse).Inc()
			logger.Warn("仓库创建者 ID 无效", "repo", repo.RepoID, "creator", repo.Description.Creator, "error", err)
			continue
		}

		logger.Info("请求 bundle", "repo", repo.RepoID, "owner", owner.ShortString())
		if err := r.requester.RequestBundle(ctx, owner, repo.RepoID); err != nil {
			errorsTotal.WithLabelValues(loopBundle, stageRequest).Inc()
			logger.Warn("请求 bundle 失败", "repo", repo.RepoID, "error", err)
			continue
		}
		bundleRequestsTotal.Inc()
		requested++
	}
	return requested
}
