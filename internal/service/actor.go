package service

import (
	"context"
	"errors"
	"rubric_backend/internal/cache"
	"rubric_backend/internal/model"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/util"
	"rubric_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor 当前操作者，由 controller 从令牌中解析后显式传入
type Actor struct {
	UserID       uint
	Role         model.UserRole
	InstructorID uint
}

// CanEdit 管理员、问卷所属教师或该教师的助教可以编辑
func (a Actor) CanEdit(q *model.Questionnaire) bool {
	switch {
	case a.Role.AtLeast(model.Admin):
		return true
	case a.Role == model.Instructor:
		return a.UserID == q.InstructorID
	case a.Role == model.TeachingAssistant:
		return a.InstructorID != 0 && a.InstructorID == q.InstructorID
	default:
		return false
	}
}

// lockEditable 在事务内锁定问卷行并校验编辑权限
func lockEditable(tx *gorm.DB, repo *repository.QuestionnaireRepository, actor Actor, id uint) (*model.Questionnaire, error) {
	q, err := repo.WithTx(tx).FindByIDForUpdate(id)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError(msgNoSuchQuestionnaire)
		}
		return nil, err
	}
	if !actor.CanEdit(q) {
		return nil, util.NewForbiddenError("You are not allowed to modify this questionnaire.")
	}
	return q, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// invalidate 缓存失效失败只记录日志，数据库已提交
func invalidate(ctx context.Context, c cache.QuestionnaireCache, types bool, ids ...uint) {
	if err := c.InvalidateQuestionnaire(ctx, ids...); err != nil {
		logger.Log.Warn("questionnaire cache invalidation failed", zap.Uints("ids", ids), zap.Error(err))
	}
	if !types {
		return
	}
	if err := c.InvalidateQuestionTypes(ctx); err != nil {
		logger.Log.Warn("question types cache invalidation failed", zap.Error(err))
	}
}
