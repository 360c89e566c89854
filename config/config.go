package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig        `mapstructure:"server"`
	Database  DatabaseConfig      `mapstructure:"db"`
	Redis     RedisConfig         `mapstructure:"redis"`
	Auth      AuthConfig          `mapstructure:"auth"`
	LLM       LLMConfig           `mapstructure:"llm"`
	Pricing   PricingConfig       `mapstructure:"pricing"`
	Roles     map[string][]string `mapstructure:"roles"`
	RateLimit RateLimitConfig     `mapstructure:"rate_limit"`
	Session   SessionConfig       `mapstructure:"session"`
	Log       LogConfig           `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	BodyLimit int64      `mapstructure:"body_limit"`
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
// AllowOriginPatterns 用于预览部署等动态域名（正则，整串匹配）
type CORSConfig struct {
	AllowOrigins        []string `mapstructure:"allow_origins"`
	AllowOriginPatterns []string `mapstructure:"allow_origin_patterns"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
// 配置了 URL（如 DATABASE_URL）时优先使用
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// MigrateURL 生成 golang-migrate 使用的 postgres:// 连接串
func (c *DatabaseConfig) MigrateURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// LLMConfig 文本生成服务配置
type LLMConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int64         `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PricingConfig 按百万 token 计价的费率表（美元）
type PricingConfig struct {
	InputPerMillion  float64 `mapstructure:"input_per_million"`
	OutputPerMillion float64 `mapstructure:"output_per_million"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	LoginLimit     int           `mapstructure:"login_limit"`
	LoginWindow    time.Duration `mapstructure:"login_window"`
	GenerateLimit  int           `mapstructure:"generate_limit"`
	GenerateWindow time.Duration `mapstructure:"generate_window"`
}

// SessionConfig 客户端空闲会话配置
type SessionConfig struct {
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	WarningBefore   time.Duration `mapstructure:"warning_before"`
	AbsoluteTimeout time.Duration `mapstructure:"absolute_timeout"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultRoles 默认角色能力表，可被 roles.* 配置整体覆盖
func DefaultRoles() map[string][]string {
	user := []string{"generate", "history.own"}
	manager := append([]string{
		"job_types.manage", "output_rules.manage", "templates.manage",
		"users.view", "logs.view", "history.view",
	}, user...)
	admin := append([]string{
		"users.manage", "teams.manage", "usage.view", "history.export", "scope.global",
	}, manager...)
	return map[string][]string{
		"user":    user,
		"manager": manager,
		"admin":   admin,
	}
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.cors.allow_origin_patterns", []string{})

	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "scout_assist")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Tokyo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "8h")
	v.SetDefault("auth.issuer", "scout-assist")

	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("pricing.input_per_million", 3.00)
	v.SetDefault("pricing.output_per_million", 15.00)

	v.SetDefault("rate_limit.login_limit", 10)
	v.SetDefault("rate_limit.login_window", "1m")
	v.SetDefault("rate_limit.generate_limit", 30)
	v.SetDefault("rate_limit.generate_window", "1m")

	setSessionDefaults(v)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容部署平台注入的通用变量名
	_ = v.BindEnv("db.url", "SCOUT_DB_URL", "DATABASE_URL")
	_ = v.BindEnv("llm.api_key", "SCOUT_LLM_API_KEY", "CLAUDE_API_KEY")
	_ = v.BindEnv("auth.jwt_secret", "SCOUT_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("server.port", "SCOUT_SERVER_PORT", "PORT")
	_ = v.BindEnv("frontend_url", "SCOUT_FRONTEND_URL", "FRONTEND_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// FRONTEND_URL 以逗号分隔时追加到白名单
	if extra := v.GetString("frontend_url"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.CORS.AllowOrigins = append(cfg.Server.CORS.AllowOrigins, o)
			}
		}
	}

	if len(cfg.Roles) == 0 {
		cfg.Roles = DefaultRoles()
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("配置校验失败: auth.access_token_ttl 必须为正数")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Pricing.InputPerMillion < 0 || c.Pricing.OutputPerMillion < 0 {
		return fmt.Errorf("配置校验失败: pricing 费率不能为负数")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("配置校验失败: llm.max_tokens 必须为正数")
	}
	for _, p := range c.Server.CORS.AllowOriginPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("配置校验失败: 无效的 CORS 域名模式 %q: %w", p, err)
		}
	}
	for _, r := range []string{"user", "manager", "admin"} {
		if _, ok := c.Roles[r]; !ok {
			return fmt.Errorf("配置校验失败: roles.%s 未定义", r)
		}
	}
	return nil
}
