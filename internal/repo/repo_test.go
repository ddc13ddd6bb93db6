package repo

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
	"github.com/dep2p/go-megaengine/internal/core/storage/engine/badger"
	"github.com/dep2p/go-megaengine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	eng, err := badger.Open(engine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return NewStore(eng)
}

func testRepo(id, path string) *types.Repo {
	return types.NewRepo(id, types.P2PDescription{
		Creator:     "did:key:z6Mktest",
		Name:        "test-repo",
		Description: "A test repository",
		Timestamp:   1000,
	}, path)
}

// ============================================================================
//                              RepoID
// ============================================================================

func TestGenerateRepoID(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	root := []byte("4b825dc642cb6eb9a060e54bf8d69288fbee4904")

	id, err := GenerateRepoID(root, pub)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "did:repo:z"))
	assert.True(t, IsRepoID(id))

	again, err := GenerateRepoID(root, pub)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	other, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	different, err := GenerateRepoID(root, other)
	require.NoError(t, err)
	assert.NotEqual(t, id, different)

	_, err = GenerateRepoID(nil, pub)
	assert.ErrorIs(t, err, ErrEmptyRootCommit)
	_, err = GenerateRepoID(root, pub[:16])
	assert.ErrorIs(t, err, types.ErrInvalidKeyLength)

	assert.False(t, IsRepoID("did:repo:"))
	assert.False(t, IsRepoID("did:key:z6Mk"))
}

// ============================================================================
//                              Manager
// ============================================================================

func TestManager_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)

	require.NoError(t, m.Register(ctx, testRepo("did:repo:test", "/tmp/test-repo")))
	assert.Equal(t, 1, m.Count())

	err := m.Register(ctx, testRepo("did:repo:test", "/tmp/other-path"))
	assert.ErrorIs(t, err, ErrRepoExists)
	assert.Equal(t, 1, m.Count())

	// 原路径映射不受影响
	id, ok := m.GetByPath("/tmp/test-repo")
	require.True(t, ok)
	assert.Equal(t, "did:repo:test", id)
	_, ok = m.GetByPath("/tmp/other-path")
	assert.False(t, ok)
}

func TestManager_GetListRemove(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	require.NoError(t, m.Register(ctx, testRepo("did:repo:b", "/tmp/b")))
	require.NoError(t, m.Register(ctx, testRepo("did:repo:a", "/tmp/a/")))

	r, ok := m.Get("did:repo:a")
	require.True(t, ok)
	assert.Equal(t, "test-repo", r.Description.Name)

	// 路径规范化
	id, ok := m.GetByPath("/tmp/a")
	require.True(t, ok)
	assert.Equal(t, "did:repo:a", id)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "did:repo:a", list[0].RepoID)

	removed, err := m.Remove(ctx, "did:repo:a")
	require.NoError(t, err)
	assert.Equal(t, "did:repo:a", removed.RepoID)
	_, ok = m.GetByPath("/tmp/a")
	assert.False(t, ok)

	_, err = m.Remove(ctx, "did:repo:a")
	assert.ErrorIs(t, err, ErrRepoNotFound)

	_, ok = m.Get("did:repo:missing")
	assert.False(t, ok)
	assert.ErrorIs(t, m.Register(ctx, &types.Repo{}), ErrInvalidRepo)
}

func TestManager_PersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	m := NewManager(store)
	require.NoError(t, m.Register(ctx, testRepo("did:repo:x", "/srv/x")))

	// 新的管理器从 store 恢复
	m2 := NewManager(store)
	require.NoError(t, m2.Load(ctx))
	assert.Equal(t, 1, m2.Count())
	assert.ErrorIs(t, m2.Register(ctx, testRepo("did:repo:x", "/srv/y")), ErrRepoExists)

	_, err := m2.Remove(ctx, "did:repo:x")
	require.NoError(t, err)
	_, err = store.GetRepo(ctx, "did:repo:x")
	assert.ErrorIs(t, err, ErrRepoNotFound)
}

// ============================================================================
//                              Store
// ============================================================================

func TestStore_RepoCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	r := testRepo("did:repo:one", "/srv/one")
	require.NoError(t, store.AddRepo(ctx, r))
	assert.ErrorIs(t, store.AddRepo(ctx, r), ErrRepoExists)

	got, err := store.GetRepo(ctx, "did:repo:one")
	require.NoError(t, err)
	assert.Equal(t, r, got)

	ext := testRepo("did:repo:two", "/srv/two")
	ext.IsExternal = true
	require.NoError(t, store.SaveRepo(ctx, ext))

	repos, err := store.ListRepos(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "did:repo:one", repos[0].RepoID)
	assert.True(t, repos[1].IsExternal)

	require.NoError(t, store.SetBundlePath(ctx, "did:repo:two", "/srv/bundles/two.bundle"))
	got, err = store.GetRepo(ctx, "did:repo:two")
	require.NoError(t, err)
	assert.True(t, got.HasBundle())

	assert.ErrorIs(t, store.SetBundlePath(ctx, "did:repo:none", "x"), ErrRepoNotFound)
	assert.ErrorIs(t, store.DeleteRepo(ctx, "did:repo:none"), ErrRepoNotFound)
}

func TestStore_RefsChangeDetection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := "did:repo:refs"
	require.NoError(t, store.AddRepo(ctx, testRepo(id, "/srv/refs")))

	refs := []types.Ref{
		{Name: "refs/heads/main", Hash: "aaa"},
		{Name: "refs/tags/v1", Hash: "bbb"},
	}

	changed, err := store.HasRefsChanged(ctx, id, refs)
	require.NoError(t, err)
	assert.True(t, changed, "空快照视为变化")

	require.NoError(t, store.BatchSaveRefs(ctx, id, refs))

	// 顺序无关
	reversed := []types.Ref{refs[1], refs[0]}
	changed, err = store.HasRefsChanged(ctx, id, reversed)
	require.NoError(t, err)
	assert.False(t, changed)

	// 哈希变化
	moved := []types.Ref{{Name: "refs/heads/main", Hash: "ccc"}, refs[1]}
	changed, err = store.HasRefsChanged(ctx, id, moved)
	require.NoError(t, err)
	assert.True(t, changed)

	// 引用删除
	changed, err = store.HasRefsChanged(ctx, id, refs[:1])
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestStore_BatchSaveRefsReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := "did:repo:replace"

	require.NoError(t, store.BatchSaveRefs(ctx, id, []types.Ref{
		{Name: "refs/heads/main", Hash: "aaa"},
		{Name: "refs/heads/old", Hash: "bbb"},
	}))
	require.NoError(t, store.BatchSaveRefs(ctx, id, []types.Ref{
		{Name: "refs/heads/main", Hash: "ccc"},
	}))

	refs, err := store.LoadRefs(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []types.Ref{{Name: "refs/heads/main", Hash: "ccc"}}, refs)

	// 其他仓库的快照不受影响
	require.NoError(t, store.BatchSaveRefs(ctx, "did:repo:other", []types.Ref{{Name: "refs/heads/dev", Hash: "ddd"}}))
	refs, err = store.LoadRefs(ctx, id)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

func TestStore_DeleteRemovesRefs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := "did:repo:gone"
	require.NoError(t, store.AddRepo(ctx, testRepo(id, "/srv/gone")))
	require.NoError(t, store.BatchSaveRefs(ctx, id, []types.Ref{{Name: "refs/heads/main", Hash: "aaa"}}))

	require.NoError(t, store.DeleteRepo(ctx, id))
	refs, err := store.LoadRefs(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListRepos(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.BatchSaveRefs(ctx, "did:repo:x", nil), context.Canceled)
}
