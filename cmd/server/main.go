package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"scout-assist/config"
	"scout-assist/internal/api/middleware"
	"scout-assist/internal/api/router"
	"scout-assist/internal/authz"
	"scout-assist/internal/llm"
	"scout-assist/internal/repository"
	"scout-assist/internal/service"
	"scout-assist/pkg/database"
	"scout-assist/pkg/jwt"
	applogger "scout-assist/pkg/logger"
	"scout-assist/pkg/ratelimit"
	"scout-assist/pkg/redis"
)

func main() {
	// 1. 加载配置（.env → config.yaml → 环境变量）
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(os.Getenv("SCOUT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("llm_model", cfg.LLM.Model),
	)

	// 3. 连接数据库（迁移由 cmd/migrate 执行）
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var (
		rdb       *redis.Client
		blacklist service.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单不可用，限流改为进程内计数", zap.Error(err))
		limiter = ratelimit.NewMemory(2 * max(cfg.RateLimit.LoginWindow, cfg.RateLimit.GenerateWindow))
	} else {
		blacklist, limiter = rdb, rdb
	}

	// 5. 权限策略 / JWT / 生成网关
	policy, err := authz.NewPolicy(cfg.Roles)
	if err != nil {
		logger.Fatal("角色配置无效", zap.Error(err))
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	generator := llm.NewAnthropicGenerator(&cfg.LLM, logger)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, policy, generator, logger)

	// 7. 初始化路由
	engine := router.Setup(router.NewDeps(cfg, svc, policy, limiter, logger))

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
