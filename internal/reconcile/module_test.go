package reconcile

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/pkg/interfaces"
)

func moduleApp(t *testing.T, cfg *config.Config, reg *fakeRegistry) (*fxtest.App, *Service) {
	t.Helper()
	var svc *Service
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(
			func() interfaces.Registry { return reg },
			func() interfaces.BundleRequester { return &recordingRequester{} },
			func() interfaces.VCS { return fakeVCS{} },
			func() clock.Clock { return clock.NewMock() },
		),
		Module(),
		fx.Populate(&svc),
	)
	return app, svc
}

// TestModule 测试启用时随生命周期启停
func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Reconcile.BundleInterval = config.Duration(5 * time.Second)
	reg := newFakeRegistry()

	app, svc := moduleApp(t, cfg, reg)
	require.NotNil(t, svc)
	assert.Equal(t, 5*time.Second, svc.bundle.Interval())
	assert.Equal(t, DefaultRefsInterval, svc.refs.Interval())

	app.RequireStart()
	require.Eventually(t, func() bool { return reg.listCount() == 2 }, time.Second, 5*time.Millisecond)
	app.RequireStop()
}

// TestModule_Disabled 测试禁用时不启动循环
func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Reconcile.Enable = false
	reg := newFakeRegistry()

	app, _ := moduleApp(t, cfg, reg)
	app.RequireStart()
	app.RequireStop()
	assert.Equal(t, 0, reg.listCount())
}
