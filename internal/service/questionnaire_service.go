package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"rubric_backend/internal/cache"
	"rubric_backend/internal/config"
	"rubric_backend/internal/model"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/util"
	"rubric_backend/pkg/logger"
	"rubric_backend/pkg/monitoring"
	"rubric_backend/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const msgNoSuchQuestionnaire = "No such Questionnaire exists."

// Uploader 导出文件的存储目标
type Uploader interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

type QuestionnaireService struct {
	DB                *gorm.DB
	QuestionnaireRepo *repository.QuestionnaireRepository
	QuestionRepo      *repository.QuestionRepository
	Guard             *AnswerGuard
	Filing            *FilingService
	Cache             cache.QuestionnaireCache
	Storage           Uploader
	Cfg               *config.QuestionnaireConfig
}

func NewQuestionnaireService(
	db *gorm.DB,
	questionnaireRepo *repository.QuestionnaireRepository,
	questionRepo *repository.QuestionRepository,
	guard *AnswerGuard,
	filing *FilingService,
	c cache.QuestionnaireCache,
	storage Uploader,
	cfg *config.QuestionnaireConfig,
) *QuestionnaireService {
	if c == nil {
		c = cache.NewNopCache()
	}
	return &QuestionnaireService{
		DB:                db,
		QuestionnaireRepo: questionnaireRepo,
		QuestionRepo:      questionRepo,
		Guard:             guard,
		Filing:            filing,
		Cache:             c,
		Storage:           storage,
		Cfg:               cfg,
	}
}

// CreateQuestionnaireRequest 创建问卷请求
type CreateQuestionnaireRequest struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	Private          bool   `json:"private"`
	MinQuestionScore *int   `json:"minQuestionScore"`
	MaxQuestionScore *int   `json:"maxQuestionScore"`
	InstructionLoc   string `json:"instructionLoc"`
}

// QuestionPatchFailure 批量编辑中单个题目的失败原因
type QuestionPatchFailure struct {
	QuestionID uint   `json:"questionId"`
	Error      string `json:"error"`
}

// UpdateResult 批量编辑结果
type UpdateResult struct {
	Questionnaire    *model.Questionnaire   `json:"questionnaire"`
	UpdatedQuestions []uint                 `json:"updatedQuestions"`
	Failed           []QuestionPatchFailure `json:"failed"`
}

func (s *QuestionnaireService) loadForEdit(tx *gorm.DB, actor Actor, id uint) (*model.Questionnaire, error) {
	return lockEditable(tx, s.QuestionnaireRepo, actor, id)
}

// Create 保存问卷并归档到对应分类目录，两步在同一事务中
func (s *QuestionnaireService) Create(ctx context.Context, actor Actor, req CreateQuestionnaireRequest) (q *model.Questionnaire, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.Create")
	defer func() {
		finish(err)
		monitoring.ObserveOp("create", err)
	}()

	t, err := model.ParseQuestionnaireType(req.Type)
	if err != nil {
		return nil, err
	}

	q = &model.Questionnaire{
		Name:             req.Name,
		InstructorID:     actor.InstructorID,
		Private:          req.Private,
		MinQuestionScore: s.Cfg.DefaultMinScore,
		MaxQuestionScore: s.Cfg.DefaultMaxScore,
		Type:             t,
		DisplayType:      t.DisplayType(),
		InstructionLoc:   req.InstructionLoc,
	}
	if req.MinQuestionScore != nil {
		q.MinQuestionScore = *req.MinQuestionScore
	}
	if req.MaxQuestionScore != nil {
		q.MaxQuestionScore = *req.MaxQuestionScore
	}
	if q.InstructionLoc == "" {
		q.InstructionLoc = s.Cfg.DefaultInstructionLoc
	}
	if err = q.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.QuestionnaireRepo.WithTx(tx).Create(q); err != nil {
			return err
		}
		_, err := s.Filing.File(tx, q)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("questionnaire created",
		zap.Uint("questionnaire_id", q.ID),
		zap.String("type", string(q.Type)),
		zap.Uint("user_id", actor.UserID),
	)
	return q, nil
}

// Get 带题目的问卷，优先读缓存
func (s *QuestionnaireService) Get(ctx context.Context, id uint) (*model.Questionnaire, error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.Get", attribute.Int64("questionnaire.id", int64(id)))
	var err error
	defer func() { finish(err) }()

	if cached, cerr := s.Cache.GetQuestionnaire(ctx, id); cerr != nil {
		logger.Log.Warn("questionnaire cache read failed", zap.Uint("questionnaire_id", id), zap.Error(cerr))
	} else if cached != nil {
		return cached, nil
	}

	q, err := s.QuestionnaireRepo.WithContext(ctx).FindWithQuestions(id)
	if err != nil {
		if isNotFound(err) {
			err = util.NewNotFoundError(msgNoSuchQuestionnaire)
		}
		return nil, err
	}

	if cerr := s.Cache.SetQuestionnaire(ctx, q); cerr != nil {
		logger.Log.Warn("questionnaire cache write failed", zap.Uint("questionnaire_id", id), zap.Error(cerr))
	}
	return q, nil
}

// List 公开问卷和当前用户（或其教师）的问卷
func (s *QuestionnaireService) List(ctx context.Context, actor Actor, page, limit int) ([]model.Questionnaire, int64, error) {
	return s.QuestionnaireRepo.WithContext(ctx).List(actor.InstructorID, page, limit)
}

// Copy 深拷贝问卷、题目和建议，并归档副本；任一步失败全部回滚
func (s *QuestionnaireService) Copy(ctx context.Context, actor Actor, sourceID uint) (clone *model.Questionnaire, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.Copy", attribute.Int64("questionnaire.id", int64(sourceID)))
	defer func() {
		finish(err)
		monitoring.ObserveOp("copy", err)
	}()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questionnaireRepo := s.QuestionnaireRepo.WithTx(tx)
		questionRepo := s.QuestionRepo.WithTx(tx)

		src, err := questionnaireRepo.FindWithQuestions(sourceID)
		if err != nil {
			if isNotFound(err) {
				return util.NewNotFoundError(msgNoSuchQuestionnaire)
			}
			return err
		}

		clone = src.CopyFor(actor.InstructorID)
		if err := questionnaireRepo.Create(clone); err != nil {
			return err
		}

		for i := range src.Questions {
			orig := &src.Questions[i]
			copied := orig.CopyTo(clone.ID)
			if err := questionRepo.Create(&copied); err != nil {
				return err
			}

			advices := make([]model.QuestionAdvice, 0, len(orig.Advices))
			for _, a := range orig.Advices {
				advices = append(advices, model.QuestionAdvice{QuestionID: copied.ID, Score: a.Score, Advice: a.Advice})
			}
			if err := questionRepo.CreateAdvices(advices); err != nil {
				return err
			}
			copied.Advices = advices
			clone.Questions = append(clone.Questions, copied)
		}

		_, err = s.Filing.File(tx, clone)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("questionnaire copied",
		zap.Uint("source_id", sourceID),
		zap.Uint("questionnaire_id", clone.ID),
		zap.Int("questions", len(clone.Questions)),
	)
	return clone, nil
}

// Update 修改问卷字段并逐题应用补丁。问卷字段非法时整个请求失败；
// 单个题目失败只回滚该题的保存点并记录在结果中
func (s *QuestionnaireService) Update(ctx context.Context, actor Actor, id uint, fields map[string]interface{}, patches map[uint]map[string]interface{}) (result *UpdateResult, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.Update",
		attribute.Int64("questionnaire.id", int64(id)),
		attribute.Int("questions.patched", len(patches)),
	)
	defer func() {
		finish(err)
		monitoring.ObserveOp("update", err)
	}()

	result = &UpdateResult{UpdatedQuestions: []uint{}, Failed: []QuestionPatchFailure{}}
	typesChanged := false

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.loadForEdit(tx, actor, id)
		if err != nil {
			return err
		}

		fields := copyFields(fields)
		if _, ok := fields["display_type"]; !ok {
			if raw, ok := fields["type"]; ok {
				if t, err := model.ParseQuestionnaireType(fmt.Sprint(raw)); err == nil && t != q.Type {
					fields["display_type"] = t.DisplayType()
				}
			}
		}

		changed, err := applyQuestionnaireFields(q, fields)
		if err != nil {
			return err
		}
		if err := s.QuestionnaireRepo.WithTx(tx).UpdateColumns(q, changed); err != nil {
			return err
		}
		if _, refile := changed["display_type"]; refile {
			if err := s.Filing.Unfile(tx, q.ID); err != nil {
				return err
			}
			if _, err := s.Filing.File(tx, q); err != nil {
				return err
			}
		}

		ids := make([]uint, 0, len(patches))
		for qid := range patches {
			ids = append(ids, qid)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, qid := range ids {
			var columns map[string]interface{}
			perr := tx.Transaction(func(sp *gorm.DB) error {
				repo := s.QuestionRepo.WithTx(sp)
				question, err := repo.FindInQuestionnaire(q.ID, qid)
				if err != nil {
					if isNotFound(err) {
						return util.NewNotFoundError("Question %d does not belong to this questionnaire.", qid)
					}
					return err
				}
				columns, err = applyQuestionPatch(question, patches[qid])
				if err != nil {
					return err
				}
				return repo.UpdateColumns(question, columns)
			})
			if perr != nil {
				appErr, ok := util.AsAppError(perr)
				if !ok {
					return perr
				}
				result.Failed = append(result.Failed, QuestionPatchFailure{QuestionID: qid, Error: appErr.Message})
				continue
			}
			if len(columns) > 0 {
				result.UpdatedQuestions = append(result.UpdatedQuestions, qid)
				if _, ok := columns["type"]; ok {
					typesChanged = true
				}
			}
		}

		result.Questionnaire, err = s.QuestionnaireRepo.WithTx(tx).FindWithQuestions(q.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.Cache, typesChanged, id)
	if len(result.Failed) > 0 {
		monitoring.QuestionPatchFailures.Add(float64(len(result.Failed)))
		logger.Log.Warn("questionnaire update finished with rejected question patches",
			zap.Uint("questionnaire_id", id),
			zap.Int("failed", len(result.Failed)),
		)
	}
	return result, nil
}

// Delete 被作业引用或已有作答时拒绝删除；否则删除建议、题目、目录节点和问卷本身
func (s *QuestionnaireService) Delete(ctx context.Context, actor Actor, id uint) (q *model.Questionnaire, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.Delete", attribute.Int64("questionnaire.id", int64(id)))
	defer func() {
		finish(err)
		monitoring.ObserveOp("delete", err)
	}()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = s.loadForEdit(tx, actor, id)
		if err != nil {
			return err
		}

		questionnaireRepo := s.QuestionnaireRepo.WithTx(tx)
		assignment, err := questionnaireRepo.FirstReferencingAssignment(id)
		if err != nil {
			return err
		}
		if assignment != nil {
			return util.NewInUseError("The assignment %s uses this questionnaire. Are sure you want to delete the assignment?", assignment.Name)
		}

		answers, err := s.Guard.AnswerRepo.WithTx(tx).CountForQuestionnaire(id)
		if err != nil {
			return err
		}
		if answers > 0 {
			return util.NewHasResponsesError("There are responses based on this rubric, we suggest you do not delete it.")
		}

		questionRepo := s.QuestionRepo.WithTx(tx)
		questionIDs, err := questionRepo.IDsByQuestionnaire(id)
		if err != nil {
			return err
		}
		if err := questionRepo.DeleteAdvices(questionIDs); err != nil {
			return err
		}
		if err := questionRepo.DeleteByQuestionnaire(id); err != nil {
			return err
		}
		if err := s.Filing.Unfile(tx, id); err != nil {
			return err
		}
		return questionnaireRepo.Delete(id)
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.Cache, true, id)
	logger.Log.Info("questionnaire deleted", zap.Uint("questionnaire_id", id), zap.Uint("user_id", actor.UserID))
	return q, nil
}

// ToggleAccess 在公开和私有之间切换
func (s *QuestionnaireService) ToggleAccess(ctx context.Context, actor Actor, id uint) (q *model.Questionnaire, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.ToggleAccess", attribute.Int64("questionnaire.id", int64(id)))
	defer func() {
		finish(err)
		monitoring.ObserveOp("toggle", err)
	}()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = s.loadForEdit(tx, actor, id)
		if err != nil {
			return err
		}
		private := !q.Private
		if err := s.QuestionnaireRepo.WithTx(tx).UpdateColumns(q, map[string]interface{}{"private": private}); err != nil {
			return err
		}
		q.Private = private
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.Cache, false, id)
	return q, nil
}

func copyFields(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

var exportHeader = []string{"seq", "txt", "type", "weight", "size", "alternatives", "max_label", "min_label"}

// Export 把题目导出为 CSV 并上传到存储，返回文件地址
func (s *QuestionnaireService) Export(ctx context.Context, id uint) (url string, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.Export", attribute.Int64("questionnaire.id", int64(id)))
	defer func() {
		finish(err)
		monitoring.ObserveOp("export", err)
	}()

	q, err := s.QuestionnaireRepo.WithContext(ctx).FindWithQuestions(id)
	if err != nil {
		if isNotFound(err) {
			err = util.NewNotFoundError(msgNoSuchQuestionnaire)
		}
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err = w.Write(exportHeader); err != nil {
		return "", err
	}
	for _, question := range q.Questions {
		weight := ""
		if question.Weight != nil {
			weight = strconv.Itoa(*question.Weight)
		}
		record := []string{
			strconv.FormatFloat(question.Seq, 'f', -1, 64),
			question.Txt,
			string(question.Type),
			weight,
			question.Size,
			question.Alternatives,
			question.MaxLabel,
			question.MinLabel,
		}
		if err = w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("exports/questionnaire_%d_%s.csv", q.ID, uuid.New().String())
	url, err = s.Storage.Upload(ctx, filename, bytes.NewReader(buf.Bytes()), int64(buf.Len()), util.MimeCSV)
	if err != nil {
		return "", err
	}

	logger.Log.Info("questionnaire exported", zap.Uint("questionnaire_id", q.ID), zap.String("url", url))
	return url, nil
}

// InvalidateResponses 供没有事务的调用方使用的作答失效检查
func (s *QuestionnaireService) InvalidateResponses(ctx context.Context, id uint) (invalidated bool, err error) {
	ctx, finish := tracing.StartSpan(ctx, "QuestionnaireService.InvalidateResponses", attribute.Int64("questionnaire.id", int64(id)))
	defer func() { finish(err) }()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.QuestionnaireRepo.WithTx(tx).FindByID(id); err != nil {
			if isNotFound(err) {
				return util.NewNotFoundError(msgNoSuchQuestionnaire)
			}
			return err
		}
		var err error
		invalidated, err = s.Guard.CheckAndInvalidateResponses(tx, id)
		return err
	})
	if err != nil {
		return false, err
	}
	if invalidated {
		monitoring.ResponsesInvalidated.Inc()
		invalidate(ctx, s.Cache, false, id)
	}
	return invalidated, nil
}
