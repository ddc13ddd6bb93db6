package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		level slog.Level
		ok    bool
	}{
		{"debug", LevelDebug, true},
		{" INFO ", LevelInfo, true},
		{"", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"verbose", LevelInfo, false},
	}
	for _, tt := range tests {
		level, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.level, level, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestLazyLogger_FollowsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l := Logger("core/test")

	var first bytes.Buffer
	Configure(&first, LevelInfo, false)
	l.Debug("hidden")
	l.Info("shown", "k", "v")
	assert.NotContains(t, first.String(), "hidden")
	assert.Contains(t, first.String(), "component=core/test")
	assert.Contains(t, first.String(), "k=v")

	// 替换默认 logger 后同一个 LazyLogger 写到新目标
	var second bytes.Buffer
	Configure(&second, LevelDebug, false)
	l.Debug("now visible")
	assert.Contains(t, second.String(), "now visible")
	assert.NotContains(t, first.String(), "now visible")
}

func TestConfigureFromEnv_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")

	var buf bytes.Buffer
	ConfigureFromEnv(&buf)
	Logger("megaengine").Info("dropped")
	Logger("megaengine").Warn("kept")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "megaengine", rec["component"])
}
