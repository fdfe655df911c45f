// 手动修复问卷目录节点脚本
//
// 问卷在创建或复制时已经在同一事务中归档；此脚本用于导入旧数据
// 或新增分类目录后，为缺少节点的问卷补建节点。
//
// 用法: go run scripts/refile_questionnaires.go

package main

import (
	"context"
	"log"
	"os"

	"rubric_backend/internal/config"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/service"
	"rubric_backend/pkg/database"
	"rubric_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	if err := database.SeedFolders(db); err != nil {
		log.Fatalf("创建分类目录失败: %v", err)
	}

	filing := service.NewFilingService(repository.NewTreeRepository(db))

	log.Println("开始补建问卷节点...")
	filed, failed, err := filing.RefileMissing(context.Background(), db)
	if err != nil {
		log.Fatalf("查询未归档问卷失败: %v", err)
	}
	log.Printf("完成！归档 %d 个，失败 %d 个", filed, failed)
}
