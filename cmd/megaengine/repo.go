package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/control"
	"github.com/dep2p/go-megaengine/internal/core/storage"
	"github.com/dep2p/go-megaengine/internal/repo"
	"github.com/dep2p/go-megaengine/internal/vcs"
	"github.com/dep2p/go-megaengine/pkg/types"
)

// dialTimeout 连接控制端点的超时
const dialTimeout = 2 * time.Second

func (c *cli) newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "仓库相关命令",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "登记本地仓库",
		Args:  cobra.NoArgs,
		RunE:  c.runRepoAdd,
	}
	add.Flags().String("path", "", "本地仓库路径")
	add.Flags().String("description", "", "仓库描述")
	_ = add.MarkFlagRequired("path")
	_ = c.v.BindPFlag(keyRepoPath, add.Flags().Lookup("path"))
	_ = c.v.BindPFlag(keyRepoDesc, add.Flags().Lookup("description"))

	cmd.AddCommand(add, &cobra.Command{
		Use:   "list",
		Short: "列出已登记的仓库",
		Args:  cobra.NoArgs,
		RunE:  c.runRepoList,
	})
	return cmd
}

// registry 命令行访问注册表的方式
type registry interface {
	Register(ctx context.Context, r *types.Repo) error
	List(ctx context.Context) ([]*types.Repo, error)
}

// withRegistry 选择注册表执行 fn
//
// 节点运行时经控制端点访问，否则直接打开数据库，结束后关闭。
func withRegistry(ctx context.Context, cfg *config.Config, fn func(registry) error) (err error) {
	if path := cfg.Storage.ControlPath(); path != "" {
		dctx, cancel := context.WithTimeout(ctx, dialTimeout)
		client, dialErr := control.Dial(dctx, path)
		cancel()
		if dialErr == nil {
			defer func() {
				err = multierr.Append(err, client.Close())
			}()
			logger.Debug("经控制端点访问运行中的节点", "path", path)
			return fn(remoteRegistry{client})
		}
		logger.Debug("未连接到运行中的节点，直接打开注册表", "error", dialErr)
	}

	eng, err := storage.NewEngine(storage.EngineConfig(cfg))
	if err != nil {
		return fmt.Errorf("打开注册表失败: %w", err)
	}
	defer func() {
		err = multierr.Append(err, eng.Close())
	}()

	m := repo.NewManager(repo.NewStore(eng))
	if err := m.Load(ctx); err != nil {
		return err
	}
	return fn(localRegistry{m})
}

// localRegistry 直接读写数据库
type localRegistry struct {
	m *repo.Manager
}

func (l localRegistry) Register(ctx context.Context, r *types.Repo) error {
	return l.m.Register(ctx, r)
}

func (l localRegistry) List(context.Context) ([]*types.Repo, error) {
	return l.m.List(), nil
}

// remoteRegistry 经控制端点由运行中的节点读写
type remoteRegistry struct {
	c *control.Client
}

func (r remoteRegistry) Register(ctx context.Context, repoEntry *types.Repo) error {
	res, err := r.c.AddRepo(ctx, repoEntry)
	if err != nil {
		return err
	}
	if res.Exists {
		return fmt.Errorf("%w: %s", repo.ErrRepoExists, res.RepoID)
	}
	return nil
}

func (r remoteRegistry) List(ctx context.Context) ([]*types.Repo, error) {
	return r.c.ListRepos(ctx)
}

func (c *cli) runRepoAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	kp, err := loadKeyPair(cfg)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(c.v.GetString(keyRepoPath))
	if err != nil {
		return err
	}
	git := vcs.NewGitCLI()
	root, err := git.RootCommit(path)
	if err != nil {
		return fmt.Errorf("读取根提交失败，请确认路径是至少有一个提交的 git 仓库: %w", err)
	}

	repoID, err := repo.GenerateRepoID(root, kp.PublicKey())
	if err != nil {
		return err
	}

	r := types.NewRepo(repoID, types.P2PDescription{
		Creator:     kp.NodeID().String(),
		Name:        vcs.RepoName(path),
		Description: c.v.GetString(keyRepoDesc),
		Timestamp:   time.Now().Unix(),
	}, path)

	return withRegistry(cmd.Context(), cfg, func(reg registry) error {
		if err := reg.Register(cmd.Context(), r); err != nil {
			if errors.Is(err, repo.ErrRepoExists) {
				return fmt.Errorf("仓库已登记: %s", repoID)
			}
			return err
		}
		logger.Info("仓库已登记", "repo", repoID, "path", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Repo %s added\n", repoID)
		return nil
	})
}

func (c *cli) runRepoList(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	return withRegistry(cmd.Context(), cfg, func(reg registry) error {
		repos, err := reg.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REPO ID\tNAME\tEXTERNAL\tPATH")
		for _, r := range repos {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", r.RepoID, r.Description.Name, r.IsExternal, r.Path)
		}
		return w.Flush()
	})
}
