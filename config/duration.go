package config

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Duration 在配置文件中以 "30s"、"24h" 形式书写的时长
//
// 裸整数按秒解释。
type Duration time.Duration

// UnmarshalText 解析时长字符串
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText 输出时长字符串
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON 接受字符串或整数秒
func (d *Duration) UnmarshalJSON(data []byte) error {
	if s, err := strconv.Unquote(string(data)); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	secs, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		return fmt.Errorf("config: duration must be a string like \"30s\" or integer seconds, got %s", data)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
