package service

import (
	"rubric_backend/internal/repository"
	"rubric_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnswerGuard 问卷结构变化（增删题目）前检查已有作答；已有作答会被删除而不是阻止修改
type AnswerGuard struct {
	AnswerRepo *repository.AnswerRepository
}

func NewAnswerGuard(answerRepo *repository.AnswerRepository) *AnswerGuard {
	return &AnswerGuard{AnswerRepo: answerRepo}
}

// CheckAndInvalidateResponses 在调用方事务内执行，删除了作答时返回 true
func (g *AnswerGuard) CheckAndInvalidateResponses(tx *gorm.DB, questionnaireID uint) (bool, error) {
	repo := g.AnswerRepo.WithTx(tx)

	count, err := repo.CountForQuestionnaire(questionnaireID)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	deleted, err := repo.DeleteForQuestionnaire(questionnaireID)
	if err != nil {
		return false, err
	}

	logger.Log.Info("invalidating responses of edited questionnaire",
		zap.Uint("questionnaire_id", questionnaireID),
		zap.Int64("answers", deleted),
	)
	return true, nil
}
