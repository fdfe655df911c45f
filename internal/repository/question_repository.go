package repository

import (
	"context"
	"database/sql"
	"rubric_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

func (r *QuestionRepository) WithContext(ctx context.Context) *QuestionRepository {
	return &QuestionRepository{DB: r.DB.WithContext(ctx)}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Omit("Advices").Create(q).Error
}

// CreateBatch 批量插入，调用方负责事务
func (r *QuestionRepository) CreateBatch(qs []model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	return r.DB.Omit("Advices").Create(&qs).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

// FindInQuestionnaire 只查找属于指定问卷的题目
func (r *QuestionRepository) FindInQuestionnaire(questionnaireID, id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Where("questionnaire_id = ?", questionnaireID).First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) ListByQuestionnaire(questionnaireID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("questionnaire_id = ?", questionnaireID).Order("seq asc, id asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) List(page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64
	query := r.DB.Model(&model.Question{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("id asc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// MaxSeq 问卷当前最大序号，没有题目时为 0
func (r *QuestionRepository) MaxSeq(questionnaireID uint) (float64, error) {
	var max sql.NullFloat64
	err := r.DB.Model(&model.Question{}).
		Where("questionnaire_id = ?", questionnaireID).
		Select("MAX(seq)").
		Scan(&max).Error
	if err != nil || !max.Valid {
		return 0, err
	}
	return max.Float64, nil
}

func (r *QuestionRepository) UpdateColumns(q *model.Question, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return r.DB.Model(q).Updates(columns).Error
}

func (r *QuestionRepository) IDsByQuestionnaire(questionnaireID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Question{}).Where("questionnaire_id = ?", questionnaireID).Pluck("id", &ids).Error
	return ids, err
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) DeleteByQuestionnaire(questionnaireID uint) error {
	return r.DB.Where("questionnaire_id = ?", questionnaireID).Delete(&model.Question{}).Error
}

// DistinctTypes 当前在用的题目类型
func (r *QuestionRepository) DistinctTypes() ([]string, error) {
	var types []string
	err := r.DB.Model(&model.Question{}).Distinct("type").Order("type asc").Pluck("type", &types).Error
	return types, err
}

func (r *QuestionRepository) CreateAdvices(advices []model.QuestionAdvice) error {
	if len(advices) == 0 {
		return nil
	}
	return r.DB.Create(&advices).Error
}

func (r *QuestionRepository) DeleteAdvices(questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	return r.DB.Where("question_id IN ?", questionIDs).Delete(&model.QuestionAdvice{}).Error
}
