package megaengine

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/internal/core/identity"
	"github.com/dep2p/go-megaengine/internal/protocol/gossip"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

// Option 启动选项
type Option func(*options)

// options 内部选项
type options struct {
	keyPair      *identity.KeyPair
	gossip       gossip.Factory
	vcs          interfaces.VCS
	requester    interfaces.BundleRequester
	clock        clock.Clock
	startTimeout time.Duration
	fxOptions    []fx.Option
}

func defaultOptions() *options {
	return &options{startTimeout: 30 * time.Second}
}

// WithKeyPair 直接使用给定密钥对，不读取密钥文件
func WithKeyPair(kp *identity.KeyPair) Option {
	return func(o *options) {
		o.keyPair = kp
	}
}

// WithGossip 设置传播服务工厂，节点启动后在后台运行
func WithGossip(factory gossip.Factory) Option {
	return func(o *options) {
		o.gossip = factory
	}
}

// WithVCS 替换默认的 git 命令行读取器
func WithVCS(v interfaces.VCS) Option {
	return func(o *options) {
		o.vcs = v
	}
}

// WithRequester 替换同步循环使用的 bundle 请求方
func WithRequester(r interfaces.BundleRequester) Option {
	return func(o *options) {
		o.requester = r
	}
}

// WithClock 设置路由表、证书与同步循环共用的时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithStartTimeout 设置启动超时
func WithStartTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.startTimeout = d
		}
	}
}

// WithFxOptions 追加自定义 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) {
		o.fxOptions = append(o.fxOptions, opts...)
	}
}
