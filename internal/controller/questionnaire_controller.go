package controller

import (
	"fmt"
	"strings"

	"rubric_backend/internal/service"
	"rubric_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionnaireController struct {
	Service  *service.QuestionnaireService
	PageSize int
}

func NewQuestionnaireController(svc *service.QuestionnaireService, pageSize int) *QuestionnaireController {
	return &QuestionnaireController{Service: svc, PageSize: pageSize}
}

// UpdateQuestionnaireRequest 批量编辑请求，questions 的键为题目ID
type UpdateQuestionnaireRequest struct {
	Questionnaire map[string]interface{}          `json:"questionnaire"`
	Questions     map[uint]map[string]interface{} `json:"questions"`
}

// @Summary 获取问卷详情
// @Description 返回问卷及按序号排列的题目
// @Tags 问卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "问卷ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questionnaires/{id} [get]
func (c *QuestionnaireController) Get(ctx *gin.Context) {
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

// @Summary 问卷列表
// @Description 公开问卷以及当前教师自己的问卷
// @Tags 问卷管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questionnaires [get]
func (c *QuestionnaireController) List(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	page, limit := util.ParsePage(ctx, c.PageSize)

	list, total, err := c.Service.List(ctx.Request.Context(), actor, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// @Summary 创建问卷
// @Description 创建问卷并归档到对应分类目录
// @Tags 问卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateQuestionnaireRequest true "问卷信息"
// @Success 201 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/questionnaires [post]
func (c *QuestionnaireController) Create(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateQuestionnaireRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, "You have successfully created a questionnaire!", q)
}

// @Summary 复制问卷
// @Description 复制问卷及其题目和建议，副本属于当前教师
// @Tags 问卷管理
// @Produce json
// @Security BearerAuth
// @Param id query int true "源问卷ID"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/questionnaires/copy [post]
func (c *QuestionnaireController) Copy(ctx *gin.Context) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	id, err := util.ParseIDQuery(ctx, "id")
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	clone, err := c.Service.Copy(ctx.Request.Context(), actor, id)
	if err != nil {
		if ae, ok := util.AsAppError(err); ok {
			util.Error(ctx, util.StatusFor(ae.Kind),
				"The questionnaire was not able to be copied. Please check the original course for missing information. "+ae.Message)
			return
		}
		util.RespondError(ctx, err)
		return
	}
	name := strings.TrimPrefix(clone.Name, "Copy of ")
	util.Created(ctx, fmt.Sprintf("Copy of questionnaire %s has been created successfully.", name), clone)
}

// @Summary 批量编辑问卷
// @Description 修改问卷字段并逐题应用修改；单题失败不影响其他题目，失败列表在响应中返回
// @Tags 问卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "问卷ID"
// @Param body body UpdateQuestionnaireRequest true "修改内容"
// @Success 200 {object} util.Response{data=service.UpdateResult}
// @Failure 403 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/questionnaires/{id} [put]
func (c *QuestionnaireController) Update(ctx *gin.Context) {
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

	var req UpdateQuestionnaireRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.Update(ctx.Request.Context(), actor, id, req.Questionnaire, req.Questions)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "The questionnaire has been successfully updated!", result)
}

// @Summary 删除问卷
// @Description 被作业引用或已有作答的问卷不能删除
// @Tags 问卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "问卷ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/questionnaires/{id} [delete]
func (c *QuestionnaireController) Delete(ctx *gin.Context) {
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

	q, err := c.Service.Delete(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, fmt.Sprintf("The questionnaire \"%s\" has been successfully deleted.", q.Name), nil)
}

// @Summary 切换问卷公开/私有
// @Tags 问卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/questionnaires/{id}/toggle_access [post]
func (c *QuestionnaireController) ToggleAccess(ctx *gin.Context) {
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

	q, err := c.Service.ToggleAccess(ctx.Request.Context(), actor, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx,
		fmt.Sprintf("The questionnaire \"%s\" has been successfully made %s.", q.Name, q.AccessLabel()),
		gin.H{"id": q.ID, "private": q.Private},
	)
}

// @Summary 导出问卷题目
// @Description 导出为 CSV 并返回文件地址
// @Tags 问卷管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "问卷ID"
// @Success 200 {object} util.Response
// @Router /api/questionnaires/{id}/export [post]
func (c *QuestionnaireController) Export(ctx *gin.Context) {
	id, err := util.ParseIDParam(ctx, "id")
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	url, err := c.Service.Export(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
