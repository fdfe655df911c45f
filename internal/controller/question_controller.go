package controller

import (
	"rubric_backend/internal/service"
	"rubric_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Service  *service.QuestionService
	PageSize int
}

func NewQuestionController(svc *service.QuestionService, pageSize int) *QuestionController {
	return &QuestionController{Service: svc, PageSize: pageSize}
}

// AddQuestionsRequest 批量追加题目
type AddQuestionsRequest struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Weight *int   `json:"weight"`
}

// @Summary 题目列表
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx, c.PageSize)

	list, total, err := c.Service.List(ctx.Request.Context(), page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// @Summary 在用的题目类型
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/questions/types [get]
func (c *QuestionController) Types(ctx *gin.Context) {
	types, err := c.Service.Types(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, types)
}

// @Summary 获取题目详情
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) Get(ctx *gin.Context) {
	id, err := util.ParseIDParam(ctx, "id")
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	q, err := c.Service.Get(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// @Summary 创建题目
// @Description 空字段按题目类型的默认值填充
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateQuestionRequest true "题目信息"
// @Success 201 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, invalidated, err := c.Service.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	msg := "The question was successfully created."
	if invalidated {
		msg += " Any existing reviews for the questionnaire have been deleted!"
	}
	util.Created(ctx, msg, q)
}

// @Summary 修改题目
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body object true "要修改的字段"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParseIDParam(ctx, "id")
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	var patch map[string]interface{}
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Update(ctx.Request.Context(), actor, id, patch)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "The question was successfully updated.", q)
}

// @Summary 删除题目
// @Description 删除前会清除问卷已有作答
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParseIDParam(ctx, "id")
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	q, invalidated, err := c.Service.Delete(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	msg := "You have successfully deleted the question!"
	if invalidated {
		msg = "You have successfully deleted the question. Any existing reviews for the questionnaire have been deleted!"
	}
	util.SuccessMessage(ctx, msg, gin.H{"id": q.ID, "questionnaireId": q.QuestionnaireID})
}

// @Summary 批量追加题目
// @Description 在问卷末尾追加同类型题目；已有作答会被清除
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "问卷ID"
// @Param body body AddQuestionsRequest true "题目类型和数量"
// @Success 201 {object} util.Response{data=service.AddQuestionsResult}
// @Failure 422 {object} util.Response
// @Router /api/questionnaires/{id}/add_new_questions [post]
func (c *QuestionController) AddQuestions(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParseIDParam(ctx, "id")
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	var req AddQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.AddQuestions(ctx.Request.Context(), actor, id, req.Type, req.Count, req.Weight)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	msg := "You have successfully added a new question."
	if result.ResponsesInvalidated {
		msg = "You have successfully added a new question. Any existing reviews for the questionnaire have been deleted!"
	}
	util.Created(ctx, msg, result)
}
