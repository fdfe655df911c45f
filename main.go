// @title Rubric 后端 API
// @version 1.0
// @description 问卷（评分表/调查）与题目管理服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"path/filepath"

	"rubric_backend/internal/app"
	"rubric_backend/internal/config"
	"rubric_backend/pkg/configwatcher"
	"rubric_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	// 配置热更新
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		path := filepath.Join(*configDir, "config.yaml")
		if err := configwatcher.WatchConfig(path, application.ReloadConfig, stop); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()

	application.Run()
}
