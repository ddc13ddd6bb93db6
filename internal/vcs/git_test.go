package vcs

import (
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-megaengine/pkg/types"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git 不可用")
	}
}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"-C", dir, "-c", "user.name=tester", "-c", "user.email=tester@example.com", "-c", "commit.gpgsign=false"}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	require.NoError(t, err, string(out))
	return strings.TrimSpace(string(out))
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	git(t, dir, "init", "-q")
	git(t, dir, "commit", "-q", "--allow-empty", "-m", "root")
	return dir
}

func TestGitCLI_ReadRefs(t *testing.T) {
	requireGit(t)
	dir := initRepo(t)
	git(t, dir, "tag", "v1")
	head := git(t, dir, "rev-parse", "HEAD")
	branch := git(t, dir, "rev-parse", "--abbrev-ref", "HEAD")

	refs, err := NewGitCLI().ReadRefs(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []types.Ref{
		{Name: "refs/heads/" + branch, Hash: head},
		{Name: "refs/tags/v1", Hash: head},
	}, refs)
}

func TestGitCLI_RootCommit(t *testing.T) {
	requireGit(t)
	dir := initRepo(t)
	root := git(t, dir, "rev-parse", "HEAD")
	git(t, dir, "commit", "-q", "--allow-empty", "-m", "second")

	id, err := NewGitCLI().RootCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, root, hex.EncodeToString(id))
}

func TestGitCLI_NotRepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()

	_, err := NewGitCLI().ReadRefs(dir)
	assert.ErrorIs(t, err, ErrNotRepository)
	_, err = NewGitCLI().RootCommit(dir)
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestGitCLI_SubdirectoryRejected(t *testing.T) {
	requireGit(t)
	dir := initRepo(t)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	_, err := NewGitCLI().RootCommit(sub)
	assert.ErrorIs(t, err, ErrNotRepository)
	_, err = NewGitCLI().ReadRefs(sub)
	assert.ErrorIs(t, err, ErrNotRepository)

	_, err = NewGitCLI().RootCommit(filepath.Join(dir, ".git"))
	assert.ErrorIs(t, err, ErrNotRepository)

	_, err = NewGitCLI().RootCommit(dir + string(filepath.Separator))
	assert.NoError(t, err)
}

func TestGitCLI_BareRepository(t *testing.T) {
	requireGit(t)
	src := initRepo(t)
	bare := filepath.Join(t.TempDir(), "mirror.git")
	git(t, src, "clone", "-q", "--bare", src, bare)

	id, err := NewGitCLI().RootCommit(bare)
	require.NoError(t, err)
	assert.Equal(t, git(t, src, "rev-parse", "HEAD"), hex.EncodeToString(id))

	refs, err := NewGitCLI().ReadRefs(bare)
	require.NoError(t, err)
	assert.NotEmpty(t, refs)
}

func TestGitCLI_EmptyRepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	git(t, dir, "init", "-q")

	refs, err := NewGitCLI().ReadRefs(dir)
	require.NoError(t, err)
	assert.Empty(t, refs)

	_, err = NewGitCLI().RootCommit(dir)
	assert.ErrorIs(t, err, ErrNoCommits)
}

func TestGitCLI_MissingBinary(t *testing.T) {
	g := &GitCLI{Binary: "git-does-not-exist-megaengine"}
	_, err := g.ReadRefs(t.TempDir())
	assert.ErrorIs(t, err, ErrGitNotFound)
}

func TestParseRefs(t *testing.T) {
	out := []byte("aaa refs/heads/main\n\nbbb refs/tags/v1\nmalformed\n")
	assert.Equal(t, []types.Ref{
		{Name: "refs/heads/main", Hash: "aaa"},
		{Name: "refs/tags/v1", Hash: "bbb"},
	}, parseRefs(out))
}

func TestRepoName(t *testing.T) {
	assert.Equal(t, "mega", RepoName("/srv/git/mega"))
	assert.Equal(t, "mega", RepoName("/srv/git/mega.git/"))
}
