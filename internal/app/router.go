package app

import (
	"rubric_backend/docs"
	"rubric_backend/internal/config"
	"rubric_backend/internal/middleware"
	"rubric_backend/internal/model"
	"rubric_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerQuestionnaireRoutes(authGroup, c)
		a.registerQuestionRoutes(authGroup, c)

		// 管理员创建账号
		authGroup.POST("/users", middleware.RequireRole(model.Admin), c.auth.Register)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerQuestionnaireRoutes(rg *gin.RouterGroup, c *controllers) {
	student := middleware.RequireRole(model.Student)
	ta := middleware.RequireRole(model.TeachingAssistant)
	instructor := middleware.RequireRole(model.Instructor)

	questionnaires := rg.Group("/questionnaires")
	{
		questionnaires.GET("", student, c.questionnaire.List)
		questionnaires.GET("/:id", student, c.questionnaire.Get)

		questionnaires.POST("", instructor, c.questionnaire.Create)
		questionnaires.POST("/copy", instructor, c.questionnaire.Copy)
		questionnaires.PUT("/:id", ta, c.questionnaire.Update)
		questionnaires.DELETE("/:id", instructor, c.questionnaire.Delete)
		questionnaires.POST("/:id/toggle_access", instructor, c.questionnaire.ToggleAccess)
		questionnaires.POST("/:id/add_new_questions", ta, c.question.AddQuestions)
		questionnaires.POST("/:id/export", instructor, c.questionnaire.Export)
	}
}

func (a *App) registerQuestionRoutes(rg *gin.RouterGroup, c *controllers) {
	questions := rg.Group("/questions")
	questions.Use(middleware.RequireRole(model.TeachingAssistant))
	{
		questions.GET("", c.question.List)
		questions.GET("/types", c.question.Types)
		questions.GET("/:id", c.question.Get)
		questions.POST("", c.question.Create)
		questions.PUT("/:id", c.question.Update)
		questions.DELETE("/:id", c.question.Delete)
	}
}
