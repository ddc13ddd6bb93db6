package identity

import (
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("core/identity")

// ErrKeyPairMissing 启动时未找到密钥对
var ErrKeyPairMissing = errors.New(`keypair not found, run "megaengine auth init" first`)

// ============================================================================
//                              模块输入输出
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config

	// KeyPair 直接注入的密钥对（可选，测试和嵌入场景使用）
	KeyPair *KeyPair `name:"injected_keypair" optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	KeyPair *KeyPair
}

// ProvideKeyPair 加载节点密钥对
//
// 优先使用注入的密钥对；否则从配置的文件加载，文件不存在时
// 返回 ErrKeyPairMissing，不自动生成。
func ProvideKeyPair(input ModuleInput) (ModuleOutput, error) {
	if input.KeyPair != nil {
		return ModuleOutput{KeyPair: input.KeyPair}, nil
	}

	path := input.Config.Storage.KeyPairPath()
	kp, err := LoadKeyPair(path)
	if errors.Is(err, ErrKeyPairNotFound) {
		logger.Error("未找到节点密钥对", "path", path)
		return ModuleOutput{}, ErrKeyPairMissing
	}
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("加载密钥对失败: %w", err)
	}
	if !kp.CanSign() {
		logger.Warn("节点密钥对不含私钥，节点仅能验证签名", "path", path)
	}

	logger.Info("已加载节点密钥对", "nodeID", kp.NodeID().String())
	return ModuleOutput{KeyPair: kp}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideKeyPair),
	)
}
