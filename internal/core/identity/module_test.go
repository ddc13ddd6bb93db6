package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-megaengine/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

func testConfig(t *testing.T) *config.Config {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = t.TempDir()
	return cfg
}

// TestModule_LoadsPersistedKeyPair 测试从磁盘加载密钥对
func TestModule_LoadsPersistedKeyPair(t *testing.T) {
	cfg := testConfig(t)
	want, err := InitKeyPair(cfg.Storage.KeyPairPath())
	require.NoError(t, err)

	var got *KeyPair
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&got),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, got)
	assert.True(t, want.Equal(got))
}

// TestModule_MissingKeyPair 测试密钥对缺失时启动失败并提示
func TestModule_MissingKeyPair(t *testing.T) {
	cfg := testConfig(t)

	_, err := ProvideKeyPair(ModuleInput{Config: cfg})
	require.ErrorIs(t, err, ErrKeyPairMissing)
	assert.Contains(t, err.Error(), "auth init")
}

// TestModule_InjectedKeyPair 测试注入的密钥对优先
func TestModule_InjectedKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	out, err := ProvideKeyPair(ModuleInput{Config: testConfig(t), KeyPair: kp})
	require.NoError(t, err)
	assert.Same(t, kp, out.KeyPair)
}
