package repository

import (
	"context"
	"rubric_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionnaireRepository struct {
	DB *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *QuestionnaireRepository) WithTx(tx *gorm.DB) *QuestionnaireRepository {
	return &QuestionnaireRepository{DB: tx}
}

func (r *QuestionnaireRepository) WithContext(ctx context.Context) *QuestionnaireRepository {
	return &QuestionnaireRepository{DB: r.DB.WithContext(ctx)}
}

func (r *QuestionnaireRepository) Create(q *model.Questionnaire) error {
	return r.DB.Omit("Questions").Create(q).Error
}

func (r *QuestionnaireRepository) FindByID(id uint) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.DB.First(&q, id).Error
	return &q, err
}

// FindByIDForUpdate 加行锁读取，修改同一问卷结构的事务按顺序执行
func (r *QuestionnaireRepository) FindByIDForUpdate(id uint) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error
	return &q, err
}

// FindWithQuestions 加载问卷及按 seq 排序的题目和建议
func (r *QuestionnaireRepository) FindWithQuestions(id uint) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq asc, id asc")
		}).
		Preload("Questions.Advices", func(db *gorm.DB) *gorm.DB {
			return db.Order("score asc")
		}).
		First(&q, id).Error
	return &q, err
}

// UpdateColumns 只更新给定的列
func (r *QuestionnaireRepository) UpdateColumns(q *model.Questionnaire, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	return r.DB.Model(q).Updates(columns).Error
}

func (r *QuestionnaireRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Questionnaire{}, id).Error
}

// List 公开问卷以及 instructorID 自己的问卷
func (r *QuestionnaireRepository) List(instructorID uint, page, limit int) ([]model.Questionnaire, int64, error) {
	var qs []model.Questionnaire
	var total int64

	query := r.DB.Model(&model.Questionnaire{}).
		Where("private = ? OR instructor_id = ?", false, instructorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// FirstReferencingAssignment 返回引用该问卷的第一个作业，没有则返回 nil
func (r *QuestionnaireRepository) FirstReferencingAssignment(id uint) (*model.Assignment, error) {
	var assignments []model.Assignment
	err := r.DB.
		Joins("JOIN assignment_questionnaires aq ON aq.assignment_id = assignments.id AND aq.deleted_at IS NULL").
		Where("aq.questionnaire_id = ?", id).
		Order("assignments.id asc").
		Limit(1).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, nil
	}
	return &assignments[0], nil
}
