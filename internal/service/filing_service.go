package service

import (
	"context"

	"rubric_backend/internal/model"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/util"
	"rubric_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FilingService 把问卷挂到与其展示类型同名的分类目录下
type FilingService struct {
	TreeRepo *repository.TreeRepository
}

func NewFilingService(treeRepo *repository.TreeRepository) *FilingService {
	return &FilingService{TreeRepo: treeRepo}
}

// File 必须在保存问卷的同一事务中调用，失败时整个事务回滚
func (f *FilingService) File(tx *gorm.DB, q *model.Questionnaire) (*model.Node, error) {
	repo := f.TreeRepo.WithTx(tx)

	folder, err := repo.FindFolderByDisplayType(q.DisplayType)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewFilingError(nil, "No folder exists for questionnaire category %q.", q.DisplayType)
		}
		return nil, err
	}

	parent, err := repo.FindFolderNode(folder.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewFilingError(nil, "The folder %q is not part of the questionnaire tree.", folder.Name)
		}
		return nil, err
	}

	node, err := repo.FindOrCreateQuestionnaireNode(parent.ID, q.ID)
	if err != nil {
		return nil, util.NewFilingError(err, "The questionnaire could not be filed under %q.", folder.Name)
	}
	return node, nil
}

func (f *FilingService) Unfile(tx *gorm.DB, questionnaireID uint) error {
	return f.TreeRepo.WithTx(tx).DeleteQuestionnaireNode(questionnaireID)
}

// RefileMissing 为缺少节点的问卷补建节点；单个问卷归档失败只记录日志
func (f *FilingService) RefileMissing(ctx context.Context, db *gorm.DB) (filed int, failed int, err error) {
	orphans, err := f.TreeRepo.WithTx(db.WithContext(ctx)).UnfiledQuestionnaires()
	if err != nil {
		return 0, 0, err
	}

	for i := range orphans {
		q := &orphans[i]
		ferr := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := f.File(tx, q)
			return err
		})
		if ferr != nil {
			failed++
			logger.Log.Warn("questionnaire could not be filed",
				zap.Uint("questionnaire_id", q.ID),
				zap.String("display_type", q.DisplayType),
				zap.Error(ferr),
			)
			continue
		}
		filed++
	}
	return filed, failed, nil
}
