package reconcile

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

// DefaultRefsInterval 引用同步周期
const DefaultRefsInterval = 60 * time.Second

// RefReconciler 把本地仓库的引用变化写入注册表
type RefReconciler struct {
	registry interfaces.Registry
	vcs      interfaces.VCS
	clock    clock.Clock
	interval time.Duration
}

// NewRefReconciler 创建引用同步循环
func NewRefReconciler(registry interfaces.Registry, vcs interfaces.VCS, opts ...Option) *RefReconciler {
	o := applyOptions(DefaultRefsInterval, opts)
	return &RefReconciler{
		registry: registry,
		vcs:      vcs,
		clock:    o.clock,
		interval: o.interval,
	}
}

// Interval 返回同步周期
func (r *RefReconciler) Interval() time.Duration {
	return r.interval
}

// Run 周期执行 RunOnce 直到 ctx 取消
func (r *RefReconciler) Run(ctx context.Context) error {
	return runEvery(ctx, r.clock, r.interval, func(ctx context.Context) {
		r.RunOnce(ctx)
	})
}

// RunOnce 执行一轮引用同步，返回本轮更新的仓库数
func (r *RefReconciler) RunOnce(ctx context.Context) int {
	ticksTotal.WithLabelValues(loopRefs).Inc()
	logger.Debug("开始检查本地仓库引用")

	repos, err := r.registry.ListRepos(ctx)
	if err != nil {
		errorsTotal.WithLabelValues(loopRefs, stageList).Inc()
		logger.Warn("列出仓库失败", "error", err)
		return 0
	}

	updated := 0
	for _, repo := range repos {
		if ctx.Err() != nil {
			return updated
		}
		if repo.IsExternal {
			continue
		}

		refs, err := r.vcs.ReadRefs(repo.Path)
		if err != nil {
			errorsTotal.WithLabelValues(loopRefs, stageRead).Inc()
			logger.Warn("读取引用失败", "repo", repo.RepoID, "path", repo.Path, "error", err)
			continue
		}

		changed, err := r.registry.HasRefsChanged(ctx, repo.RepoID, refs)
		if err != nil {
			errorsTotal.WithLabelValues(loopRefs, stageCompare).Inc()
			logger.Warn("比较引用失败", "repo", repo.RepoID, "error", err)
			continue
		}
		if !changed {
			logger.Debug("引用无变化", "repo", repo.RepoID)
			continue
		}

		if err := r.registry.BatchSaveRefs(ctx, repo.RepoID, refs); err != nil {
			errorsTotal.WithLabelValues(loopRefs, stageSave).Inc()
			logger.Warn("保存引用失败", "repo", repo.RepoID, "error", err)
			continue
		}
		refsUpdatesTotal.Inc()
		updated++
		logger.Info("引用已更新", "repo", repo.RepoID, "refs", len(refs))
	}
	return updated
}
