package repository

import (
	"rubric_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) WithTx(tx *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: tx}
}

func (r *AnswerRepository) questionIDs(questionnaireID uint) *gorm.DB {
	return r.DB.Model(&model.Question{}).Select("id").Where("questionnaire_id = ?", questionnaireID)
}

// CountForQuestionnaire 问卷下所有题目的作答数
func (r *AnswerRepository) CountForQuestionnaire(questionnaireID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Answer{}).
		Where("question_id IN (?)", r.questionIDs(questionnaireID)).
		Count(&count).Error
	return count, err
}

func (r *AnswerRepository) CountForQuestion(questionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Answer{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}

// DeleteForQuestionnaire 删除问卷下所有作答，返回删除条数
func (r *AnswerRepository) DeleteForQuestionnaire(questionnaireID uint) (int64, error) {
	res := r.DB.Where("question_id IN (?)", r.questionIDs(questionnaireID)).Delete(&model.Answer{})
	return res.RowsAffected, res.Error
}
