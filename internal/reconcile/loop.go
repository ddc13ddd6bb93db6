package reconcile

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// runEvery 立即执行一次 fn，之后每隔 interval 执行
//
// fn 在当前 goroutine 中串行执行，执行期间到期的 tick 会被丢弃。
func runEvery(ctx context.Context, clk clock.Clock, interval time.Duration, fn func(context.Context)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn(ctx)

	ticker := clk.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(ctx)
		}
	}
}
