// Package log 封装 log/slog
//
// 组件在包级声明 logger，输出目标与级别由进程入口统一设置：
//
//	var logger = log.Logger("core/peerstore")
//
//	logger.Info("路由条目已过期", "count", n)
//
// Logger 返回的对象每次调用时读取 slog.Default()，入口处重新配置后立即生效。
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvLogLevel 日志级别（debug|info|warn|error）
	EnvLogLevel = "MEGAENGINE_LOG_LEVEL"
	// EnvLogFormat 日志格式（text|json）
	EnvLogFormat = "MEGAENGINE_LOG_FORMAT"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Configure 把默认 logger 设为写到 w 的文本或 JSON 输出
func Configure(w io.Writer, level slog.Level, json bool) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

// ConfigureFromEnv 按 MEGAENGINE_LOG_LEVEL 与 MEGAENGINE_LOG_FORMAT 配置默认 logger
func ConfigureFromEnv(w io.Writer) {
	raw := os.Getenv(EnvLogLevel)
	level, ok := ParseLevel(raw)
	Configure(w, level, strings.EqualFold(os.Getenv(EnvLogFormat), "json"))
	if !ok {
		slog.Warn("无法识别的日志级别，使用 info", "value", raw)
	}
}

// ParseLevel 解析级别名，无法识别时返回 LevelInfo 和 false
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "", "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// LazyLogger 带组件名的 logger
type LazyLogger struct {
	component string
}

// Logger 返回组件 logger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) log(level slog.Level, msg string, args []any) {
	slog.Default().With("component", l.component).Log(context.Background(), level, msg, args...)
}

func (l *LazyLogger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *LazyLogger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *LazyLogger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *LazyLogger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }

func init() {
	Configure(os.Stderr, LevelInfo, false)
}
