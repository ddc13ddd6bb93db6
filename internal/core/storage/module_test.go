package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
)

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = t.TempDir()

	var eng engine.Engine
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&eng),
	)
	require.NotNil(t, eng)
	err := eng.View(func(engine.Reader) error { return nil })
	assert.ErrorIs(t, err, engine.ErrClosed, "OnStart 之前不可读写")
	assert.NoDirExists(t, cfg.Storage.DBPath())

	app.RequireStart()

	require.NotNil(t, eng)
	require.NoError(t, eng.Update(func(tx engine.Txn) error {
		return tx.Set([]byte("k"), []byte("v"))
	}))
	assert.DirExists(t, cfg.Storage.DBPath())

	app.RequireStop()
	err = eng.View(func(engine.Reader) error { return nil })
	assert.ErrorIs(t, err, engine.ErrClosed)
}

func TestModule_FailedBuildReleasesDirectory(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = t.TempDir()

	errBoom := errors.New("boom")
	app := fx.New(
		fx.Supply(cfg),
		Module(),
		fx.Invoke(func(engine.Engine) error { return errBoom }),
		fx.NopLogger,
	)
	require.ErrorIs(t, app.Err(), errBoom)

	// 构建失败后同一目录仍可打开
	eng, err := NewEngine(EngineConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, eng.Close())
}

func TestModule_StartTwiceSameDirectoryFails(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = t.TempDir()

	first := fxtest.New(t, fx.Supply(cfg), Module(), fx.Invoke(func(engine.Engine) {}))
	first.RequireStart()
	defer first.RequireStop()

	second := fx.New(fx.Supply(cfg), Module(), fx.Invoke(func(engine.Engine) {}), fx.NopLogger)
	require.NoError(t, second.Err())
	assert.Error(t, second.Start(context.Background()))
}

func TestEngineConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = "/var/lib/mega"
	assert.Equal(t, "/var/lib/mega/db", EngineConfig(cfg).Path)

	cfg.Storage.InMemory = true
	assert.True(t, EngineConfig(cfg).InMemory)
}
