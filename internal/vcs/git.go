package vcs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dep2p/go-megaengine/pkg/interfaces"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
	"github.com/dep2p/go-megaengine/pkg/types"
)

var logger = log.Logger("vcs")

var (
	// ErrNotRepository 路径不是 Git 仓库
	ErrNotRepository = errors.New("not a git repository")

	// ErrNoCommits 仓库没有任何提交
	ErrNoCommits = errors.New("repository has no commits")

	// ErrGitNotFound 找不到 git 可执行文件
	ErrGitNotFound = errors.New("git executable not found")
)

// DefaultTimeout 单条 git 命令的超时
const DefaultTimeout = 30 * time.Second

// refFormat for-each-ref 输出格式：对象 ID 与引用名
const refFormat = "%(objectname) %(refname)"

// ============================================================================
//                              GitCLI
// ============================================================================

// GitCLI 通过 git 命令行读取本地仓库
type GitCLI struct {
	// Binary git 可执行文件，默认从 PATH 查找
	Binary string

	// Timeout 单条命令超时
	Timeout time.Duration
}

// NewGitCLI 创建使用默认设置的读取器
func NewGitCLI() *GitCLI {
	return &GitCLI{Binary: "git", Timeout: DefaultTimeout}
}

// ReadRefs 读取分支与标签引用
func (g *GitCLI) ReadRefs(path string) ([]types.Ref, error) {
	if err := g.ensureRepository(path); err != nil {
		return nil, err
	}

	out, err := g.run(path, "for-each-ref", "--format="+refFormat, "refs/heads", "refs/tags")
	if err != nil {
		return nil, fmt.Errorf("读取引用失败: %w", err)
	}
	return parseRefs(out), nil
}

// RootCommit 返回 HEAD 可达的第一个根提交 ID
func (g *GitCLI) RootCommit(path string) ([]byte, error) {
	if err := g.ensureRepository(path); err != nil {
		return nil, err
	}

	out, err := g.run(path, "rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCommits, err)
	}
	line := firstLine(out)
	if line == "" {
		return nil, ErrNoCommits
	}
	id, err := hex.DecodeString(line)
	if err != nil {
		return nil, fmt.Errorf("解析根提交 %q 失败: %w", line, err)
	}
	return id, nil
}

// RepoName 返回仓库目录名作为仓库名
func RepoName(path string) string {
	name := filepath.Base(filepath.Clean(path))
	return strings.TrimSuffix(name, ".git")
}

// ensureRepository 检查路径是否为 Git 仓库根目录
//
// 工作区仓库要求 path 为顶层目录，裸仓库要求 path 为 git 目录本身，
// 仓库内的子目录返回 ErrNotRepository。
func (g *GitCLI) ensureRepository(path string) error {
	out, err := g.run(path, "rev-parse", "--is-bare-repository")
	if err != nil {
		if errors.Is(err, ErrGitNotFound) {
			return err
		}
		return fmt.Errorf("%w: %s", ErrNotRepository, path)
	}

	query := "--show-toplevel"
	if firstLine(out) == "true" {
		query = "--absolute-git-dir"
	}
	out, err = g.run(path, "rev-parse", query)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotRepository, path)
	}
	if !samePath(firstLine(out), path) {
		return fmt.Errorf("%w: %s is inside %s", ErrNotRepository, path, firstLine(out))
	}
	return nil
}

// samePath 比较解析符号链接后的绝对路径
func samePath(a, b string) bool {
	return canonical(a) == canonical(b)
}

func canonical(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if real, err := filepath.EvalSymlinks(p); err == nil {
		p = real
	}
	return filepath.Clean(p)
}

// run 在 path 下执行 git 子命令
func (g *GitCLI) run(path string, args ...string) ([]byte, error) {
	binary := g.Binary
	if binary == "" {
		binary = "git"
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, append([]string{"-C", path}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrGitNotFound
		}
		logger.Debug("git 命令失败", "args", strings.Join(args, " "), "stderr", strings.TrimSpace(stderr.String()))
		return nil, fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// parseRefs 解析 "<hash> <name>" 行
func parseRefs(out []byte) []types.Ref {
	var refs []types.Ref
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		hash, name, ok := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		if !ok || hash == "" || name == "" {
			continue
		}
		refs = append(refs, types.Ref{Name: name, Hash: hash})
	}
	return refs
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

var _ interfaces.VCS = (*GitCLI)(nil)
