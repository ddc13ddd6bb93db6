package main

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-megaengine"
	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/core/identity"
	"github.com/dep2p/go-megaengine/internal/core/security/tls"
	"github.com/dep2p/go-megaengine/pkg/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAuthInit_Idempotent(t *testing.T) {
	t.Setenv(config.EnvRootDir, "")
	root := t.TempDir()

	out, err := execute(t, "auth", "init", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Keypair saved to")

	kp, err := identity.LoadKeyPair(filepath.Join(root, "keypair"))
	require.NoError(t, err)

	out, err = execute(t, "auth", "init", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	again, err := identity.LoadKeyPair(filepath.Join(root, "keypair"))
	require.NoError(t, err)
	assert.True(t, kp.Equal(again))
}

func TestNodeID(t *testing.T) {
	t.Setenv(config.EnvRootDir, "")
	root := t.TempDir()

	_, err := execute(t, "node", "id", "--root", root)
	assert.ErrorIs(t, err, identity.ErrKeyPairMissing)
	assert.Contains(t, err.Error(), "auth init")

	_, err = execute(t, "auth", "init", "--root", root)
	require.NoError(t, err)

	out, err := execute(t, "node", "id", "--root", root)
	require.NoError(t, err)
	id, err := types.ParseNodeID(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id.String(), "did:key:z"))
}

func TestRootEnvOverridesFlag(t *testing.T) {
	envRoot := t.TempDir()
	t.Setenv(config.EnvRootDir, envRoot)

	_, err := execute(t, "auth", "init", "--root", t.TempDir())
	require.NoError(t, err)
	assert.True(t, identity.KeyPairExists(filepath.Join(envRoot, "keypair")))
}

func initGitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git 不可用")
	}
	src := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"-c", "user.name=tester", "-c", "user.email=tester@example.com", "-c", "commit.gpgsign=false",
			"commit", "-q", "--allow-empty", "-m", "root"},
	} {
		out, err := exec.Command("git", append([]string{"-C", src}, args...)...).CombinedOutput()
		require.NoError(t, err, string(out))
	}
	return src
}

// addedRepoID 从 "Repo <id> added" 中取出仓库 ID
func addedRepoID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2, out)
	return fields[1]
}

func TestRepoAddAndList(t *testing.T) {
	src := initGitRepo(t)
	t.Setenv(config.EnvRootDir, "")
	root := t.TempDir()

	_, err := execute(t, "auth", "init", "--root", root)
	require.NoError(t, err)

	out, err := execute(t, "repo", "add", "--root", root, "--path", src, "--description", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "did:repo:z")

	// 同一仓库重复登记失败
	_, err = execute(t, "repo", "add", "--root", root, "--path", src)
	assert.Error(t, err)

	out, err = execute(t, "repo", "list", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "did:repo:z")
	assert.Contains(t, out, filepath.Base(src))
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestRepoAdd_WhileNodeRunning(t *testing.T) {
	src := initGitRepo(t)
	t.Setenv(config.EnvRootDir, "")
	root := t.TempDir()

	_, err := execute(t, "auth", "init", "--root", root)
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Storage.RootDir = root
	cfg.Node.ListenAddr = "127.0.0.1:0"
	cfg.Routing.SweepInterval = 0
	cfg.Routing.PingInterval = 0
	eng, err := megaengine.Start(context.Background(), cfg)
	require.NoError(t, err)
	defer eng.Close()

	out, err := execute(t, "repo", "add", "--root", root, "--path", src, "--description", "demo")
	require.NoError(t, err)
	id := addedRepoID(t, out)

	// 节点立即可见，下一轮引用同步即可处理
	got, ok := eng.Repos().Get(id)
	require.True(t, ok)
	assert.Equal(t, src, got.Path)

	_, err = execute(t, "repo", "add", "--root", root, "--path", src)
	assert.ErrorContains(t, err, "仓库已登记")

	out, err = execute(t, "repo", "list", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	// 节点关闭后直接读取数据库，登记已持久化
	require.NoError(t, eng.Close())
	out, err = execute(t, "repo", "list", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, id)
}

func TestRepoAdd_NotARepository(t *testing.T) {
	t.Setenv(config.EnvRootDir, "")
	root := t.TempDir()
	_, err := execute(t, "auth", "init", "--root", root)
	require.NoError(t, err)

	_, err = execute(t, "repo", "add", "--root", root, "--path", t.TempDir())
	assert.Error(t, err)
}

func TestNodeID_Verbose(t *testing.T) {
	t.Setenv(config.EnvRootDir, "")
	root := t.TempDir()
	_, err := execute(t, "auth", "init", "--root", root)
	require.NoError(t, err)

	out, err := execute(t, "node", "id", "--root", root, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "unavailable")

	cfg := config.NewConfig()
	cfg.Storage.RootDir = root
	paths := cfg.CertPaths()
	require.NoError(t, tls.EnsureCertificates(paths.Cert, paths.Key, paths.CACert))

	out, err = execute(t, "node", "id", "--root", root, "-v")
	require.NoError(t, err)
	assert.NotContains(t, out, "unavailable")
	assert.Contains(t, out, "MegaEngine CA")
	assert.Contains(t, out, "localhost")
}
