package tls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-megaengine/config"
)

// TestModule_BootstrapsCertificates 测试模块在启动前生成证书
func TestModule_BootstrapsCertificates(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = t.TempDir()

	var paths config.CertPaths
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&paths),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, cfg.CertPaths(), paths)
	for _, p := range []string{paths.Cert, paths.Key, paths.CACert, paths.CAKey} {
		assert.FileExists(t, p)
	}

	info, err := ReadCertificateInfo(paths.Cert)
	require.NoError(t, err)
	assert.False(t, info.IsCA)
}
