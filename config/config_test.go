package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SCOUT_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/scout?sslmode=disable")
	t.Setenv("FRONTEND_URL", "https://scout.example.com, https://admin.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if cfg.Database.DSN() != "postgres://u:p@db:5432/scout?sslmode=disable" {
		t.Errorf("期望 DSN 使用 DATABASE_URL，实际=%s", cfg.Database.DSN())
	}
	if cfg.Pricing.InputPerMillion != 3.00 || cfg.Pricing.OutputPerMillion != 15.00 {
		t.Errorf("默认费率不正确: %+v", cfg.Pricing)
	}
	if len(cfg.Server.CORS.AllowOrigins) != 3 {
		t.Errorf("期望 3 个允许域名，实际=%v", cfg.Server.CORS.AllowOrigins)
	}
	if _, ok := cfg.Roles["manager"]; !ok {
		t.Error("期望默认角色表包含 manager")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("SCOUT_AUTH_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Error("缺少 jwt_secret 时应返回错误")
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 3001},
		Auth:   AuthConfig{JWTSecret: "short", AccessTokenTTL: 1},
		LLM:    LLMConfig{MaxTokens: 1024},
		Roles:  DefaultRoles(),
	}
	if err := cfg.Validate(); err == nil {
		t.Error("过短的 jwt_secret 应校验失败")
	}
}

func TestValidate_BadOriginPattern(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 3001, CORS: CORSConfig{AllowOriginPatterns: []string{"(unclosed"}}},
		Auth:   AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", AccessTokenTTL: 1},
		LLM:    LLMConfig{MaxTokens: 1024},
		Roles:  DefaultRoles(),
	}
	if err := cfg.Validate(); err == nil {
		t.Error("无效的域名正则应校验失败")
	}
}

func TestDefaultRoles_Nested(t *testing.T) {
	roles := DefaultRoles()
	has := func(list []string, v string) bool {
		for _, x := range list {
			if x == v {
				return true
			}
		}
		return false
	}
	for _, c := range roles["user"] {
		if !has(roles["manager"], c) || !has(roles["admin"], c) {
			t.Errorf("能力 %s 应同时属于 manager 与 admin", c)
		}
	}
	for _, c := range roles["manager"] {
		if !has(roles["admin"], c) {
			t.Errorf("能力 %s 应属于 admin", c)
		}
	}
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient 失败: %v", err)
	}
	if cfg.BaseURL != "http://localhost:3001" {
		t.Errorf("期望默认地址，实际=%s", cfg.BaseURL)
	}
	if cfg.Session.IdleTimeout != 30*time.Minute || cfg.Session.AbsoluteTimeout != 2*time.Hour {
		t.Errorf("默认会话时限不正确: %+v", cfg.Session)
	}
}

func TestLoadClient_FromEnv(t *testing.T) {
	t.Setenv("SCOUT_CLIENT_BASE_URL", "https://scout.example.com")
	t.Setenv("SCOUT_SESSION_IDLE_TIMEOUT", "10m")
	t.Setenv("SCOUT_SESSION_WARNING_BEFORE", "2m")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient 失败: %v", err)
	}
	if cfg.BaseURL != "https://scout.example.com" || cfg.Session.IdleTimeout != 10*time.Minute {
		t.Errorf("环境变量未生效: %+v", cfg)
	}
}

func TestLoadClient_WarningNotBeforeIdle(t *testing.T) {
	t.Setenv("SCOUT_SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("SCOUT_SESSION_WARNING_BEFORE", "5m")

	if _, err := LoadClient(); err == nil {
		t.Error("warning_before 不小于 idle_timeout 时应返回错误")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SCOUT_DOTENV_PROBE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCOUT_DOTENV_PROBE", "")
	os.Unsetenv("SCOUT_DOTENV_PROBE")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv 失败: %v", err)
	}
	if got := os.Getenv("SCOUT_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("期望读取 .env 中的值，实际=%q", got)
	}
}
