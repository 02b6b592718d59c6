package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k12_curriculum_backend/internal/config"
	"k12_curriculum_backend/internal/controller"
	"k12_curriculum_backend/internal/repository"
	"k12_curriculum_backend/internal/service"
	"k12_curriculum_backend/pkg/cache"
	"k12_curriculum_backend/pkg/configwatcher"
	"k12_curriculum_backend/pkg/database"
	"k12_curriculum_backend/pkg/logger"
	"k12_curriculum_backend/pkg/monitoring"
	"k12_curriculum_backend/pkg/pagination"
	"k12_curriculum_backend/pkg/security"
	"k12_curriculum_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user     *repository.UserRepository
	module   *repository.ModuleRepository
	practice *repository.PracticeItemRepository
	assess   *repository.AssessmentRepository
	asset    *repository.EnrichmentAssetRepository
	coverage *repository.CoverageRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	asset     *service.AssetService
	coverage  *service.CoverageService
	gapFiller *service.GapFiller
}

type controllers struct {
	auth     *controller.AuthController
	coverage *controller.CoverageController
	asset    *controller.AssetController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, cfg *config.Config) *repositories {
	fetchCfg := pagination.Config{
		PageSize:   cfg.GapFill.FetchPageSize,
		MaxRetries: cfg.GapFill.FetchMaxRetries,
	}
	return &repositories{
		user:     repository.NewUserRepository(db),
		module:   repository.NewModuleRepository(db),
		practice: repository.NewPracticeItemRepository(db),
		assess:   repository.NewAssessmentRepository(db),
		asset:    repository.NewEnrichmentAssetRepository(db),
		coverage: repository.NewCoverageRepository(db, fetchCfg),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage
	s.auth = service.NewAuthService(repos.user, cfg)
	s.asset = service.NewAssetService(repos.module, repos.asset, storage)

	var snapshotCache cache.Cache
	if cfg.Coverage.CacheBackend == "redis" && rdb != nil {
		snapshotCache = cache.NewRedis(rdb, "k12:")
	} else {
		snapshotCache = cache.NewMemory()
	}

	policy := service.NewThresholdPolicy()
	s.coverage = service.NewCoverageService(repos.coverage, repos.module, policy, snapshotCache, cfg.Coverage)
	s.gapFiller = service.NewGapFiller(repos.coverage, repos.practice, repos.assess, repos.asset, service.PlaceholderItems{}, policy, cfg.GapFill)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		coverage: controller.NewCoverageController(s.coverage, s.gapFiller),
		asset:    controller.NewAssetController(s.asset),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) watchConfig(s *services) {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		s.coverage.UpdateSettings(cfg.Coverage)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Coverage.CacheBackend == "redis" {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db, cfg)
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("curriculum-readiness", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" || cfg.Storage.Type == "" {
		if cfg.Storage.LocalPath != "" {
			if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
				os.MkdirAll(cfg.Storage.LocalPath, os.ModePerm)
			}
			router.Static("/uploads", cfg.Storage.LocalPath)
		}
	}

	app.watchConfig(services)

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
