package middleware

import (
	"strings"

	"rubric_backend/internal/config"
	"rubric_backend/internal/model"
	"rubric_backend/internal/util"
	"rubric_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// RequireRole 角色等级不低于 min 才放行，管理员自动满足所有教师权限
func RequireRole(min model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if !model.UserRole(user.Role).AtLeast(min) {
			logger.Log.Info("role check failed",
				zap.Uint("user_id", user.UserID),
				zap.String("role", user.Role),
				zap.String("required", string(min)),
				zap.String("path", c.FullPath()),
			)
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
