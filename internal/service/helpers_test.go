package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"rubric_backend/internal/cache"
	"rubric_backend/internal/config"
	"rubric_backend/internal/model"
	"rubric_backend/internal/repository"
	"rubric_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var instructor = Actor{UserID: 7, Role: model.Instructor, InstructorID: 7}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedFolders(db); err != nil {
		t.Fatalf("seed folders: %v", err)
	}
	return db
}

type stubUploader struct {
	filename    string
	contentType string
	body        []byte
	err         error
}

func (u *stubUploader) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	u.filename = filename
	u.contentType = contentType
	u.body = buf.Bytes()
	return "/uploads/" + filename, nil
}

type fixture struct {
	db            *gorm.DB
	questionnaire *QuestionnaireService
	question      *QuestionService
	filing        *FilingService
	uploader      *stubUploader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.QuestionnaireConfig{
		DefaultInstructionLoc: "http://www.courses.ncsu.edu/csc517",
		DefaultMinScore:       0,
		DefaultMaxScore:       5,
		MaxBulkAdd:            20,
		PageSize:              10,
	}

	questionnaireRepo := repository.NewQuestionnaireRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	guard := NewAnswerGuard(repository.NewAnswerRepository(db))
	filing := NewFilingService(repository.NewTreeRepository(db))
	uploader := &stubUploader{}
	nop := cache.NewNopCache()

	return &fixture{
		db:            db,
		questionnaire: NewQuestionnaireService(db, questionnaireRepo, questionRepo, guard, filing, nop, uploader, cfg),
		question:      NewQuestionService(db, questionnaireRepo, questionRepo, guard, nop, cfg),
		filing:        filing,
		uploader:      uploader,
	}
}

func intPtr(v int) *int { return &v }

// seedQuestionnaire 直接写库，不经过归档
func (f *fixture) seedQuestionnaire(t *testing.T, name string, instructorID uint, questions ...model.Question) *model.Questionnaire {
	t.Helper()
	q := &model.Questionnaire{
		Name:             name,
		InstructorID:     instructorID,
		MinQuestionScore: 0,
		MaxQuestionScore: 5,
		Type:             model.ReviewQuestionnaire,
		DisplayType:      model.ReviewQuestionnaire.DisplayType(),
		InstructionLoc:   "http://example.edu/rubric",
	}
	if err := f.db.Omit("Questions").Create(q).Error; err != nil {
		t.Fatalf("seed questionnaire: %v", err)
	}
	for i := range questions {
		questions[i].QuestionnaireID = q.ID
		if err := f.db.Create(&questions[i]).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	q.Questions = questions
	return q
}

func (f *fixture) seedAnswer(t *testing.T, questionID uint) {
	t.Helper()
	if err := f.db.Create(&model.Answer{QuestionID: questionID, ResponseID: 1, Answer: intPtr(3)}).Error; err != nil {
		t.Fatalf("seed answer: %v", err)
	}
}

func (f *fixture) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	tx := f.db.Model(m)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) folderNode(t *testing.T, folderName string) *model.Node {
	t.Helper()
	var folder model.TreeFolder
	if err := f.db.Where("name = ?", folderName).First(&folder).Error; err != nil {
		t.Fatalf("folder %q: %v", folderName, err)
	}
	var node model.Node
	if err := f.db.Where("type = ? AND node_object_id = ?", model.NodeTypeFolder, folder.ID).First(&node).Error; err != nil {
		t.Fatalf("folder node %q: %v", folderName, err)
	}
	return &node
}

func (f *fixture) questionnaireNode(t *testing.T, questionnaireID uint) *model.Node {
	t.Helper()
	var node model.Node
	if err := f.db.Where("type = ? AND node_object_id = ?", model.NodeTypeQuestionnaire, questionnaireID).First(&node).Error; err != nil {
		t.Fatalf("questionnaire node %d: %v", questionnaireID, err)
	}
	return &node
}

func criterion(seq float64, txt string) model.Question {
	return model.Question{
		Seq:         seq,
		Txt:         txt,
		Type:        model.Criterion,
		Weight:      intPtr(1),
		Size:        "50, 3",
		MaxLabel:    model.DefaultMaxLabel,
		MinLabel:    model.DefaultMinLabel,
		BreakBefore: true,
	}
}
