// Package storage 组装持久化存储引擎
//
// 引擎数据位于 <root>/db，Storage.InMemory 为 true 时使用纯内存模式。
// 数据库在 OnStart 阶段打开、OnStop 阶段关闭，依赖图构建失败时不会
// 持有目录锁。
package storage

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/dep2p/go-megaengine/config"
	"github.com/dep2p/go-megaengine/internal/core/storage/engine"
	"github.com/dep2p/go-megaengine/internal/core/storage/engine/badger"
	"github.com/dep2p/go-megaengine/pkg/lib/log"
)

var logger = log.Logger("core/storage")

// ModuleInput 存储模块输入
type ModuleInput struct {
	fx.In

	Config *config.Config
	LC     fx.Lifecycle
}

// ModuleOutput 存储模块输出
type ModuleOutput struct {
	fx.Out

	Engine engine.Engine
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideStorage),
	)
}

// ProvideStorage 提供存储引擎句柄并注册打开与关闭钩子
func ProvideStorage(input ModuleInput) ModuleOutput {
	h := &handle{cfg: EngineConfig(input.Config)}
	input.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return h.open()
		},
		OnStop: func(context.Context) error {
			if err := h.Close(); err != nil {
				logger.Warn("存储引擎关闭失败", "error", err)
				return err
			}
			return nil
		},
	})
	return ModuleOutput{Engine: h}
}

// EngineConfig 由统一配置生成引擎配置
func EngineConfig(cfg *config.Config) *engine.Config {
	if cfg.Storage.InMemory {
		return engine.InMemoryConfig()
	}
	return engine.DefaultConfig(cfg.Storage.DBPath())
}

// NewEngine 创建 badger 存储引擎
func NewEngine(cfg *engine.Config) (engine.Engine, error) {
	eng, err := badger.Open(cfg)
	if err != nil {
		logger.Error("创建存储引擎失败", "path", cfg.Path, "error", err)
		return nil, err
	}
	return eng, nil
}

// ============================================================================
//                              handle
// ============================================================================

// handle 延迟打开的引擎
//
// open 之前与 Close 之后的读写均返回 engine.ErrClosed。
type handle struct {
	cfg *engine.Config

	mu  sync.RWMutex
	eng engine.Engine
}

func (h *handle) open() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.eng != nil {
		return nil
	}
	eng, err := NewEngine(h.cfg)
	if err != nil {
		return err
	}
	h.eng = eng
	return nil
}

func (h *handle) current() (engine.Engine, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.eng == nil {
		return nil, engine.ErrClosed
	}
	return h.eng, nil
}

// View 实现 engine.Engine
func (h *handle) View(fn func(engine.Reader) error) error {
	eng, err := h.current()
	if err != nil {
		return err
	}
	return eng.View(fn)
}

// Update 实现 engine.Engine
func (h *handle) Update(fn func(engine.Txn) error) error {
	eng, err := h.current()
	if err != nil {
		return err
	}
	return eng.Update(fn)
}

// Close 实现 engine.Engine，未打开时为空操作
func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.eng == nil {
		return nil
	}
	err := h.eng.Close()
	h.eng = nil
	return err
}
