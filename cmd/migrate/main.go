package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"scout-assist/config"
	"scout-assist/pkg/database"
	applogger "scout-assist/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("SCOUT_CONFIG"), "配置文件路径（可选）")
		steps      = flag.Int("steps", 1, "down 时回滚的步数")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-config path] [-steps n] up|down|version")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
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
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	mg, err := database.NewMigrator(sqlDB, logger)
	if err != nil {
		logger.Fatal("初始化迁移器失败", zap.Error(err))
	}

	switch cmd := flag.Arg(0); cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down(*steps)
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = mg.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
		}
	default:
		logger.Fatal("未知命令", zap.String("command", cmd))
	}
	if err != nil {
		logger.Fatal("迁移失败", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
}
