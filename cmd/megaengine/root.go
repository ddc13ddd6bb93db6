package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dep2p/go-megaengine/config"
)

// 配置键
const (
	keyRoot       = "root"
	keyConfig     = "config"
	keyAlias      = "node.alias"
	keyAddr       = "node.addr"
	keyCertPath   = "node.cert-path"
	keyRepoPath   = "repo.path"
	keyRepoDesc   = "repo.description"
	configFileExt = "json"
)

// cli 命令共享的状态
type cli struct {
	v *viper.Viper
}

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	c.v.SetEnvPrefix("MEGAENGINE")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "megaengine",
		Short:         "MegaEngine P2P Git",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("root", filepath.Join("~", config.DefaultRootDirName),
		fmt.Sprintf("根数据目录（%s 优先）", config.EnvRootDir))
	cmd.PersistentFlags().String("config", "", "配置文件路径（默认 <root>/config.json，不存在时使用默认配置）")
	_ = c.v.BindPFlag(keyRoot, cmd.PersistentFlags().Lookup("root"))
	_ = c.v.BindPFlag(keyConfig, cmd.PersistentFlags().Lookup("config"))

	cmd.AddCommand(
		c.newAuthCmd(),
		c.newNodeCmd(),
		c.newRepoCmd(),
	)
	return cmd
}

// loadConfig 组合配置文件、环境变量与命令行参数
//
// 根目录优先级：MEGAENGINE_ROOT > --root > 默认值。
func (c *cli) loadConfig() (*config.Config, error) {
	root, err := config.ExpandHome(c.v.GetString(keyRoot))
	if err != nil {
		return nil, err
	}
	probe := config.NewConfig()
	probe.Storage.RootDir = root
	if err := probe.ResolveRootDir(); err != nil {
		return nil, err
	}
	root = probe.Storage.RootDir

	cfg := probe
	path := c.v.GetString(keyConfig)
	if path == "" {
		c.v.SetConfigName("config")
		c.v.SetConfigType(configFileExt)
		c.v.AddConfigPath(root)
		err := c.v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		switch {
		case err == nil:
			path = c.v.ConfigFileUsed()
		case errors.As(err, &notFound):
			logger.Debug("未找到配置文件，使用默认配置", "dir", root)
		default:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}
	if path != "" {
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
		logger.Debug("已加载配置文件", "path", path)
	}

	cfg.Storage.RootDir = root
	return cfg, nil
}
