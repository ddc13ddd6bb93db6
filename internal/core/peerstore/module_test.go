package peerstore

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-megaengine/config"
)

// TestModule 测试 fx 模块提供路由表并启停清理
func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Routing.TTL = config.Duration(time.Hour)
	mock := clock.NewMock()

	var table *Table
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() clock.Clock { return mock }),
		Module(),
		fx.Populate(&table),
	)
	app.RequireStart()

	require.NotNil(t, table)
	id := newNodeID(t)
	require.NoError(t, table.Insert(id, nil))
	entry, ok := table.Get(id)
	require.True(t, ok)
	assert.Equal(t, time.Hour, entry.TTL)

	app.RequireStop()
}

// TestModule_SweeperDisabled 测试清理周期为 0 时不启动后台任务
func TestModule_SweeperDisabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Routing.SweepInterval = 0

	var table *Table
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&table),
	)
	app.RequireStart()
	assert.Equal(t, 0, table.Len())
	app.RequireStop()
}
