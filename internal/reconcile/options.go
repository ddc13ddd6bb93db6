package reconcile

import (
	"time"

	"github.com/benbjohnson/clock"
)

type options struct {
	clock    clock.Clock
	interval time.Duration
}

// Option 同步循环选项
type Option func(*options)

// WithClock 设置时钟，测试中传入 clock.NewMock()
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithInterval 设置同步周期，非正值被忽略
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

func applyOptions(interval time.Duration, opts []Option) options {
	o := options{clock: clock.New(), interval: interval}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
