package database

import (
	"fmt"
	"log"
	"rubric_backend/internal/config"
	"rubric_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	if err := SeedFolders(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate 创建/更新所有业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Questionnaire{},
		&model.Question{},
		&model.QuestionAdvice{},
		&model.Answer{},
		&model.Assignment{},
		&model.AssignmentQuestionnaire{},
		&model.TreeFolder{},
		&model.Node{},
	)
}

// SeedFolders 创建问卷根目录及各分类目录（已存在则跳过）
func SeedFolders(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		root, err := ensureFolder(tx, model.RootQuestionnaireFolder, nil, nil)
		if err != nil {
			return err
		}
		for _, name := range model.CategoryFolders {
			if _, err := ensureFolder(tx, name, &root.folderID, &root.nodeID); err != nil {
				return err
			}
		}
		return nil
	})
}

type seededFolder struct {
	folderID uint
	nodeID   uint
}

func ensureFolder(tx *gorm.DB, name string, parentFolder, parentNode *uint) (*seededFolder, error) {
	var folder model.TreeFolder
	err := tx.Where("name = ?", name).FirstOrCreate(&folder, model.TreeFolder{Name: name, ParentID: parentFolder}).Error
	if err != nil {
		return nil, err
	}

	var node model.Node
	err = tx.Where("type = ? AND node_object_id = ?", model.NodeTypeFolder, folder.ID).
		FirstOrCreate(&node, model.Node{Type: model.NodeTypeFolder, NodeObjectID: folder.ID, ParentID: parentNode}).Error
	if err != nil {
		return nil, err
	}

	return &seededFolder{folderID: folder.ID, nodeID: node.ID}, nil
}
