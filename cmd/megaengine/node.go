package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-megaengine"
	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/core/identity"
	"github.com/dep2p/go-megaengine/internal/core/security/tls"
)

func (c *cli) newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "节点相关命令",
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "启动节点",
		Args:  cobra.NoArgs,
		RunE:  c.runNodeStart,
	}
	defaults := config.DefaultNodeConfig()
	start.Flags().String("alias", defaults.Alias, "节点别名")
	start.Flags().StringP("addr", "a", defaults.ListenAddr, "监听地址，例如 0.0.0.0:9000")
	start.Flags().StringP("cert-path", "c", config.DefaultCertConfig().Dir, "证书目录（相对根目录）")
	_ = c.v.BindPFlag(keyAlias, start.Flags().Lookup("alias"))
	_ = c.v.BindPFlag(keyAddr, start.Flags().Lookup("addr"))
	_ = c.v.BindPFlag(keyCertPath, start.Flags().Lookup("cert-path"))

	id := &cobra.Command{
		Use:   "id",
		Short: "打印本地节点 ID",
		Args:  cobra.NoArgs,
		RunE:  c.runNodeID,
	}
	id.Flags().BoolP("verbose", "v", false, "同时打印证书信息")

	cmd.AddCommand(start, id)
	return cmd
}

// applyNodeFlags 显式指定的参数或环境变量覆盖配置文件
//
// 环境变量形如 MEGAENGINE_NODE_ALIAS。
func (c *cli) applyNodeFlags(cfg *config.Config) {
	if c.v.IsSet(keyAlias) {
		cfg.Node.Alias = c.v.GetString(keyAlias)
	}
	if c.v.IsSet(keyAddr) {
		cfg.Node.ListenAddr = c.v.GetString(keyAddr)
	}
	if c.v.IsSet(keyCertPath) {
		cfg.Cert.Dir = c.v.GetString(keyCertPath)
	}
}

func (c *cli) runNodeStart(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.applyNodeFlags(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("正在启动节点", "root", cfg.RootDir(), "listen", cfg.Node.ListenAddr)
	eng, err := megaengine.Start(ctx, cfg)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	info := eng.Node().Info()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Node started successfully: %s (%s)\n", info.ID, info.Alias)
	fmt.Fprintf(out, "Listening on: %s\n", eng.ListenAddr())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Fprintln(out, "正在关闭节点...")
	if err := eng.Close(); err != nil && !errors.Is(err, megaengine.ErrEngineClosed) {
		return err
	}
	return nil
}

func (c *cli) runNodeID(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	kp, err := loadKeyPair(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, kp.NodeID().String())

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		paths := cfg.CertPaths()
		for _, f := range []struct{ label, path string }{
			{"cert", paths.Cert},
			{"ca", paths.CACert},
		} {
			info, err := tls.ReadCertificateInfo(f.path)
			if err != nil {
				fmt.Fprintf(out, "%-4s %s (unavailable: %v)\n", f.label, f.path, err)
				continue
			}
			fmt.Fprintf(out, "%-4s %s subject=%q expires=%s\n",
				f.label, f.path, info.Subject, info.NotAfter.UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// loadKeyPair 读取密钥对，缺失时返回带提示的错误
func loadKeyPair(cfg *config.Config) (*identity.KeyPair, error) {
	kp, err := identity.LoadKeyPair(cfg.Storage.KeyPairPath())
	if errors.Is(err, identity.ErrKeyPairNotFound) {
		return nil, identity.ErrKeyPairMissing
	}
	if err != nil {
		return nil, fmt.Errorf("加载密钥对失败: %w", err)
	}
	return kp, nil
}
