package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"scout-assist/config"
	"scout-assist/internal/authz"
	"scout-assist/internal/dto"
	"scout-assist/internal/repository"
	"scout-assist/internal/service"
	"scout-assist/pkg/database"
	applogger "scout-assist/pkg/logger"
)

// 创建初始管理员账号，密码随机生成并仅输出一次
func main() {
	var (
		configPath = flag.String("config", os.Getenv("SCOUT_CONFIG"), "配置文件路径（可选）")
		username   = flag.String("username", "", "初始管理员用户名（必填）")
	)
	flag.Parse()

	u := strings.TrimSpace(*username)
	if u == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -username")
		os.Exit(2)
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	policy, err := authz.NewPolicy(cfg.Roles)
	if err != nil {
		logger.Fatal("角色配置无效", zap.Error(err))
	}

	password, err := generatePassword(18)
	if err != nil {
		logger.Fatal("生成密码失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := service.NewUserService(repository.NewRepository(db), policy, logger)
	user, err := users.Create(ctx, &dto.CreateUserRequest{
		Username: u,
		Password: password,
		Role:     "admin",
		Status:   "active",
	})
	if errors.Is(err, service.ErrUsernameExists) {
		logger.Fatal("用户已存在", zap.String("username", u))
	}
	if err != nil {
		logger.Fatal("创建管理员失败", zap.Error(err))
	}

	fmt.Printf("已创建管理员账号（请登录后立即修改密码）：\n  id:       %d\n  username: %s\n  password: %s\n", user.ID, user.Username, password)
}

func generatePassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
