package repository

import (
	"strings"
	"testing"

	"rubric_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestFindByIDForUpdateLocksRow(t *testing.T) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "rubric:rubric@tcp(127.0.0.1:3306)/rubric?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open mysql dialector: %v", err)
	}

	var statements []string
	err = db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	repo := NewQuestionnaireRepository(db)
	_, _ = repo.FindByIDForUpdate(3)
	_, _ = repo.FindByID(3)

	if len(statements) != 2 {
		t.Fatalf("captured %d statements: %v", len(statements), statements)
	}
	if !strings.HasSuffix(statements[0], "FOR UPDATE") {
		t.Fatalf("locking read = %q", statements[0])
	}
	if strings.Contains(statements[1], "FOR UPDATE") {
		t.Fatalf("plain read locks: %q", statements[1])
	}
}

func TestFindByIDForUpdateOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:find_for_update?mode=memory&cache=shared"),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&model.Questionnaire{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewQuestionnaireRepository(db)
	q := &model.Questionnaire{Name: "Locked", InstructorID: 7, Type: model.ReviewQuestionnaire, DisplayType: "Review", MaxQuestionScore: 5}
	if err := repo.Create(q); err != nil {
		t.Fatalf("create: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		got, err := repo.WithTx(tx).FindByIDForUpdate(q.ID)
		if err != nil {
			return err
		}
		if got.Name != "Locked" {
			t.Errorf("name = %q", got.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("locked read: %v", err)
	}

	if _, err := repo.FindByIDForUpdate(q.ID + 1); err != gorm.ErrRecordNotFound {
		t.Fatalf("missing row: %v", err)
	}
}
