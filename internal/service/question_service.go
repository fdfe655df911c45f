package service

import (
	"context"

	"rubric_backend/internal/cache"
	"rubric_backend/internal/config"
	"rubric_backend/internal/model"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/util"
	"rubric_backend/pkg/logger"
	"rubric_backend/pkg/monitoring"
	"rubric_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const msgNoSuchQuestion = "No such Question exists."

type QuestionService struct {
	DB                *gorm.DB
	QuestionnaireRepo *repository.QuestionnaireRepository
	QuestionRepo      *repository.QuestionRepository
	Guard             *AnswerGuard
	Cache             cache.QuestionnaireCache
	Cfg               *config.QuestionnaireConfig
}

func NewQuestionService(
	db *gorm.DB,
	questionnaireRepo *repository.QuestionnaireRepository,
	questionRepo *repository.QuestionRepository,
	guard *AnswerGuard,
	c cache.QuestionnaireCache,
	cfg *config.QuestionnaireConfig,
) *QuestionService {
	if c == nil {
		c = cache.NewNopCache()
	}
	return &QuestionService{
		DB:                db,
		QuestionnaireRepo: questionnaireRepo,
		QuestionRepo:      questionRepo,
		Guard:             guard,
		Cache:             c,
		Cfg:               cfg,
	}
}

// CreateQuestionRequest 单个题目创建请求，空字段按类型默认值填充
type CreateQuestionRequest struct {
	QuestionnaireID uint     `json:"questionnaireId" binding:"required"`
	Txt             string   `json:"txt"`
	Type            string   `json:"type"`
	Seq             *float64 `json:"seq"`
	Weight          *int     `json:"weight"`
	Size            string   `json:"size"`
	Alternatives    string   `json:"alternatives"`
	MaxLabel        string   `json:"maxLabel"`
	MinLabel        string   `json:"minLabel"`
	BreakBefore     *bool    `json:"breakBefore"`
}

type AddQuestionsResult struct {
	Questions            []model.Question `json:"questions"`
	ResponsesInvalidated bool             `json:"responsesInvalidated"`
}

func (s *QuestionService) List(ctx context.Context, page, limit int) ([]model.Question, int64, error) {
	return s.QuestionRepo.WithContext(ctx).List(page, limit)
}

func (s *QuestionService) Get(ctx context.Context, id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.WithContext(ctx).FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, util.NewNotFoundError(msgNoSuchQuestion)
		}
		return nil, err
	}
	return q, nil
}

// requireQuestionnaire 锁定题目所属问卷并校验 actor 的编辑权限
func (s *QuestionService) requireQuestionnaire(tx *gorm.DB, actor Actor, id uint) (*model.Questionnaire, error) {
	return lockEditable(tx, s.QuestionnaireRepo, actor, id)
}

// Create 新增单个题目。问卷结构发生变化，已有作答会被清除
func (s *QuestionService) Create(ctx context.Context, actor Actor, req CreateQuestionRequest) (question *model.Question, invalidated bool, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionService.Create", attribute.Int64("questionnaire.id", int64(req.QuestionnaireID)))
	defer func() {
		finish(err)
		monitoring.ObserveOp("create_question", err)
	}()

	variant, err := model.ResolveQuestionType(req.Type)
	if err != nil {
		return nil, false, err
	}
	if req.Seq != nil && *req.Seq <= 0 {
		return nil, false, util.NewValidationError("The sequence number must be positive.")
	}

	question = &model.Question{
		QuestionnaireID: req.QuestionnaireID,
		Txt:             req.Txt,
		Type:            variant.Type,
		Weight:          req.Weight,
		Size:            req.Size,
		Alternatives:    req.Alternatives,
		MaxLabel:        req.MaxLabel,
		MinLabel:        req.MinLabel,
		BreakBefore:     true,
	}
	if req.BreakBefore != nil {
		question.BreakBefore = *req.BreakBefore
	}
	for _, field := range []string{"weight", "size", "alternatives", "max_label", "min_label"} {
		if !variant.Accepts(field) && hasValue(question, field) {
			return nil, false, util.NewValidationError("field %q does not apply to %s questions", field, variant.Type)
		}
	}
	variant.ApplyDefaults(question)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireQuestionnaire(tx, actor, req.QuestionnaireID); err != nil {
			return err
		}
		var err error
		invalidated, err = s.Guard.CheckAndInvalidateResponses(tx, req.QuestionnaireID)
		if err != nil {
			return err
		}

		repo := s.QuestionRepo.WithTx(tx)
		if req.Seq != nil {
			question.Seq = *req.Seq
		} else {
			max, err := repo.MaxSeq(req.QuestionnaireID)
			if err != nil {
				return err
			}
			question.Seq = max + 1
		}
		return repo.Create(question)
	})
	if err != nil {
		return nil, false, err
	}

	s.afterStructuralChange(ctx, req.QuestionnaireID, invalidated)
	return question, invalidated, nil
}

// Update 单个题目修改，只写入发生变化的字段
func (s *QuestionService) Update(ctx context.Context, actor Actor, id uint, patch map[string]interface{}) (question *model.Question, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionService.Update", attribute.Int64("question.id", int64(id)))
	defer func() {
		finish(err)
		monitoring.ObserveOp("update_question", err)
	}()

	var columns map[string]interface{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.QuestionRepo.WithTx(tx)
		var err error
		question, err = repo.FindByID(id)
		if err != nil {
			if isNotFound(err) {
				return util.NewNotFoundError(msgNoSuchQuestion)
			}
			return err
		}
		if _, err := s.requireQuestionnaire(tx, actor, question.QuestionnaireID); err != nil {
			return err
		}
		columns, err = applyQuestionPatch(question, patch)
		if err != nil {
			return err
		}
		return repo.UpdateColumns(question, columns)
	})
	if err != nil {
		return nil, err
	}

	if len(columns) > 0 {
		_, typeChanged := columns["type"]
		invalidate(ctx, s.Cache, typeChanged, question.QuestionnaireID)
	}
	return question, nil
}

// Delete 先清除问卷已有作答，再删除题目及其建议
func (s *QuestionService) Delete(ctx context.Context, actor Actor, id uint) (question *model.Question, invalidated bool, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionService.Delete", attribute.Int64("question.id", int64(id)))
	defer func() {
		finish(err)
		monitoring.ObserveOp("delete_question", err)
	}()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.QuestionRepo.WithTx(tx)
		var err error
		question, err = repo.FindByID(id)
		if err != nil {
			if isNotFound(err) {
				return util.NewNotFoundError(msgNoSuchQuestion)
			}
			return err
		}
		if _, err := s.requireQuestionnaire(tx, actor, question.QuestionnaireID); err != nil {
			return err
		}

		invalidated, err = s.Guard.CheckAndInvalidateResponses(tx, question.QuestionnaireID)
		if err != nil {
			return err
		}
		if err := repo.DeleteAdvices([]uint{id}); err != nil {
			return err
		}
		return repo.Delete(id)
	})
	if err != nil {
		return nil, false, err
	}

	s.afterStructuralChange(ctx, question.QuestionnaireID, invalidated)
	logger.Log.Info("question deleted",
		zap.Uint("question_id", id),
		zap.Uint("questionnaire_id", question.QuestionnaireID),
		zap.Bool("responses_invalidated", invalidated),
	)
	return question, invalidated, nil
}

// AddQuestions 在问卷末尾追加 count 个同类型题目，序号从当前最大序号之后连续递增。
// 全部成功或全部回滚
func (s *QuestionService) AddQuestions(ctx context.Context, actor Actor, questionnaireID uint, typeTag string, count int, weight *int) (result *AddQuestionsResult, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionService.AddQuestions",
		attribute.Int64("questionnaire.id", int64(questionnaireID)),
		attribute.String("question.type", typeTag),
		attribute.Int("question.count", count),
	)
	defer func() {
		finish(err)
		monitoring.ObserveOp("add_questions", err)
	}()

	variant, err := model.ResolveQuestionType(typeTag)
	if err != nil {
		return nil, err
	}
	if count < 1 || count > s.Cfg.MaxBulkAdd {
		return nil, util.NewValidationError("The number of questions must be between 1 and %d.", s.Cfg.MaxBulkAdd)
	}
	if weight != nil && *weight < 0 {
		return nil, util.NewValidationError("The question weight cannot be negative.")
	}

	result = &AddQuestionsResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireQuestionnaire(tx, actor, questionnaireID); err != nil {
			return err
		}

		var err error
		result.ResponsesInvalidated, err = s.Guard.CheckAndInvalidateResponses(tx, questionnaireID)
		if err != nil {
			return err
		}

		repo := s.QuestionRepo.WithTx(tx)
		max, err := repo.MaxSeq(questionnaireID)
		if err != nil {
			return err
		}

		questions := make([]model.Question, 0, count)
		for i := 1; i <= count; i++ {
			q := variant.NewQuestion(questionnaireID, max+float64(i))
			if weight != nil && variant.Scored() {
				w := *weight
				q.Weight = &w
			}
			questions = append(questions, q)
		}
		if err := repo.CreateBatch(questions); err != nil {
			return err
		}
		result.Questions = questions
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterStructuralChange(ctx, questionnaireID, result.ResponsesInvalidated)
	logger.Log.Info("questions added",
		zap.Uint("questionnaire_id", questionnaireID),
		zap.String("type", string(variant.Type)),
		zap.Int("count", count),
		zap.Bool("responses_invalidated", result.ResponsesInvalidated),
	)
	return result, nil
}

// Types 当前在用的题目类型
func (s *QuestionService) Types(ctx context.Context) ([]string, error) {
	if types, err := s.Cache.GetQuestionTypes(ctx); err != nil {
		logger.Log.Warn("question types cache read failed", zap.Error(err))
	} else if types != nil {
		return types, nil
	}

	types, err := s.QuestionRepo.WithContext(ctx).DistinctTypes()
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []string{}
	}
	if err := s.Cache.SetQuestionTypes(ctx, types); err != nil {
		logger.Log.Warn("question types cache write failed", zap.Error(err))
	}
	return types, nil
}

func (s *QuestionService) afterStructuralChange(ctx context.Context, questionnaireID uint, invalidated bool) {
	if invalidated {
		monitoring.ResponsesInvalidated.Inc()
	}
	invalidate(ctx, s.Cache, true, questionnaireID)
}
