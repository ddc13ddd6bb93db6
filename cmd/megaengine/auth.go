package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-megaengine/internal/core/identity"
)

func (c *cli) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "身份相关命令",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "生成并保存新的密钥对",
		Args:  cobra.NoArgs,
		RunE:  c.runAuthInit,
	})
	return cmd
}

// runAuthInit 已存在密钥对时跳过
func (c *cli) runAuthInit(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Storage.KeyPairPath()

	kp, err := identity.InitKeyPair(path)
	if errors.Is(err, identity.ErrKeyPairExists) {
		logger.Info("密钥对已存在，跳过生成", "path", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Keypair already exists at %s\n", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("生成密钥对失败: %w", err)
	}

	logger.Info("密钥对已保存", "path", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Keypair saved to %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), kp.NodeID().String())
	return nil
}
