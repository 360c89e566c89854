package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig 命令行客户端配置（不含服务端密钥）
type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SessionFile string        `mapstructure:"session_file"`
	Session     SessionConfig `mapstructure:"session"`
}

func setSessionDefaults(v *viper.Viper) {
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.warning_before", "5m")
	v.SetDefault("session.absolute_timeout", "2h")
	v.SetDefault("session.check_interval", "1m")
}

// LoadClient 加载客户端配置：默认值 → 环境变量（SCOUT_CLIENT_BASE_URL、SCOUT_SESSION_IDLE_TIMEOUT 等）
func LoadClient() (*ClientConfig, error) {
	v := viper.New()
	v.SetDefault("base_url", "http://localhost:3001")
	v.SetDefault("timeout", "150s")
	v.SetDefault("session_file", "")
	setSessionDefaults(v)

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("base_url", "SCOUT_CLIENT_BASE_URL")
	_ = v.BindEnv("timeout", "SCOUT_CLIENT_TIMEOUT")
	_ = v.BindEnv("session_file", "SCOUT_CLIENT_SESSION_FILE")

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析客户端配置失败: %w", err)
	}
	if cfg.Session.IdleTimeout <= 0 {
		return nil, fmt.Errorf("配置校验失败: session.idle_timeout 必须为正数")
	}
	if cfg.Session.WarningBefore >= cfg.Session.IdleTimeout {
		return nil, fmt.Errorf("配置校验失败: session.warning_before 必须小于 idle_timeout")
	}
	return &cfg, nil
}
