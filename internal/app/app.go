package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rubric_backend/internal/cache"
	"rubric_backend/internal/config"
	"rubric_backend/internal/controller"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/service"
	"rubric_backend/pkg/database"
	"rubric_backend/pkg/logger"
	"rubric_backend/pkg/monitoring"
	"rubric_backend/pkg/security"
	"rubric_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracer          *sdktrace.TracerProvider
	stop            chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user          *repository.UserRepository
	questionnaire *repository.QuestionnaireRepository
	question      *repository.QuestionRepository
	answer        *repository.AnswerRepository
	tree          *repository.TreeRepository
}

type services struct {
	auth          *service.AuthService
	storage       *service.StorageService
	questionnaire *service.QuestionnaireService
	question      *service.QuestionService
}

type controllers struct {
	auth          *controller.AuthController
	questionnaire *controller.QuestionnaireController
	question      *controller.QuestionController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置文件变化后依次执行已注册的回调
func (a *App) ReloadConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		questionnaire: repository.NewQuestionnaireRepository(db),
		question:      repository.NewQuestionRepository(db),
		answer:        repository.NewAnswerRepository(db),
		tree:          repository.NewTreeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	var qc cache.QuestionnaireCache
	if rdb != nil {
		qc = cache.NewQuestionnaireCache(rdb, cfg.Questionnaire.CacheTTL())
	} else {
		qc = cache.NewNopCache()
	}

	guard := service.NewAnswerGuard(repos.answer)
	filing := service.NewFilingService(repos.tree)

	s.storage = service.NewStorageService(&cfg.Storage)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.questionnaire = service.NewQuestionnaireService(
		db,
		repos.questionnaire,
		repos.question,
		guard,
		filing,
		qc,
		s.storage,
		&cfg.Questionnaire,
	)
	s.question = service.NewQuestionService(
		db,
		repos.questionnaire,
		repos.question,
		guard,
		qc,
		&cfg.Questionnaire,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	pageSize := a.Config.Questionnaire.PageSize
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		questionnaire: controller.NewQuestionnaireController(s.questionnaire, pageSize),
		question:      controller.NewQuestionController(s.question, pageSize),
		health:        controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit, a.stop))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// initRedis 未配置或连接失败时返回 nil，服务退回无缓存模式
func initRedis(cfg *config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		logger.Log.Info("Redis not configured, questionnaire cache disabled")
		return nil
	}
	rdb, err := database.InitRedis(cfg)
	if err != nil {
		logger.Log.Warn("Failed to connect to redis, questionnaire cache disabled", zap.Error(err))
		return nil
	}
	return rdb
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		stop:   make(chan struct{}),
	}
	if cfg.MigrateOnly {
		return app
	}

	app.Redis = initRedis(&cfg.Redis)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, app.Redis)
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("rubric-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(next *config.Config) {
		logger.SetMode(next.Server.Mode)
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	close(a.stop)
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
