package control

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/repo"
	"github.com/dep2p/go-megaengine/pkg/types"
)

func testRepo(id string) *types.Repo {
	return types.NewRepo(id, types.P2PDescription{
		Creator:   "did:key:z6Mktest",
		Name:      "demo",
		Timestamp: 1000,
	}, "/srv/git/"+id)
}

func startServer(t *testing.T, m *repo.Manager) *Server {
	t.Helper()
	s := NewServer(filepath.Join(t.TempDir(), "control.sock"), m)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func dial(t *testing.T, path string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestServer_AddAndList(t *testing.T) {
	ctx := context.Background()
	m := repo.NewManager(nil)
	s := startServer(t, m)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	c := dial(t, s.Path())
	res, err := c.AddRepo(ctx, testRepo("did:repo:zA"))
	require.NoError(t, err)
	assert.Equal(t, AddResult{RepoID: "did:repo:zA"}, res)

	got, ok := m.Get("did:repo:zA")
	require.True(t, ok)
	assert.Equal(t, "demo", got.Description.Name)

	// 重复登记不改变状态
	res, err = c.AddRepo(ctx, testRepo("did:repo:zA"))
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, 1, m.Count())

	_, err = c.AddRepo(ctx, testRepo("did:repo:zB"))
	require.NoError(t, err)

	repos, err := c.ListRepos(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "did:repo:zA", repos[0].RepoID)
	assert.Equal(t, "did:repo:zB", repos[1].RepoID)
}

func TestServer_InvalidRepo(t *testing.T) {
	s := startServer(t, repo.NewManager(nil))
	c := dial(t, s.Path())

	_, err := c.AddRepo(context.Background(), &types.Repo{})
	assert.Error(t, err)
}

func TestServer_StopRemovesSocket(t *testing.T) {
	s := NewServer(filepath.Join(t.TempDir(), "control.sock"), repo.NewManager(nil))
	require.NoError(t, s.Start(context.Background()))
	assert.FileExists(t, s.Path())

	require.NoError(t, s.Stop(context.Background()))
	assert.NoFileExists(t, s.Path())
	require.NoError(t, s.Stop(context.Background()))

	_, err := Dial(context.Background(), s.Path())
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestServer_ReplacesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control.sock")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	s := NewServer(path, repo.NewManager(nil))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	c := dial(t, path)
	_, err := c.ListRepos(context.Background())
	assert.NoError(t, err)
}

func TestServer_EndpointInUse(t *testing.T) {
	first := startServer(t, repo.NewManager(nil))

	second := NewServer(first.Path(), repo.NewManager(nil))
	err := second.Start(context.Background())
	assert.ErrorIs(t, err, ErrEndpointInUse)

	// 第一个端点不受影响
	c := dial(t, first.Path())
	_, err = c.ListRepos(context.Background())
	assert.NoError(t, err)
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = t.TempDir()
	m := repo.NewManager(nil)

	app := fxtest.New(t,
		fx.Supply(cfg, m),
		Module(),
	)
	app.RequireStart()
	assert.FileExists(t, cfg.Storage.ControlPath())
	app.RequireStop()
	assert.NoFileExists(t, cfg.Storage.ControlPath())
}

func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.RootDir = t.TempDir()
	cfg.Storage.ControlSocket = ""

	app := fxtest.New(t,
		fx.Supply(cfg, repo.NewManager(nil)),
		Module(),
	)
	app.RequireStart()
	entries, err := os.ReadDir(cfg.RootDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
	app.RequireStop()
}
