package controller

import (
	"rubric_backend/internal/model"
	"rubric_backend/internal/service"
	"rubric_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// actorFromContext 由认证中间件写入的令牌构造当前操作者
func actorFromContext(ctx *gin.Context) (service.Actor, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:       claims.UserID,
		Role:         model.UserRole(claims.Role),
		InstructorID: claims.InstructorID,
	}, true
}
