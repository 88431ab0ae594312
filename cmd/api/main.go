package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/innouni-api/api/swagger"
	"github.com/noah-isme/innouni-api/internal/handler"
	"github.com/noah-isme/innouni-api/internal/repository"
	"github.com/noah-isme/innouni-api/internal/router"
	"github.com/noah-isme/innouni-api/internal/service"
	"github.com/noah-isme/innouni-api/pkg/cache"
	"github.com/noah-isme/innouni-api/pkg/config"
	"github.com/noah-isme/innouni-api/pkg/database"
	"github.com/noah-isme/innouni-api/pkg/export"
	"github.com/noah-isme/innouni-api/pkg/jobs"
	"github.com/noah-isme/innouni-api/pkg/logger"
	"github.com/noah-isme/innouni-api/pkg/storage"
)

// @title InnoUni API
// @version 1.0.0
// @description Learning platform backend: accounts, dashboards, courses, groups, tasks and achievements.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.InsecureDefaults() {
		logr.Warn("JWT_SECRET is the development default; set a real secret for production")
	}
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.DB); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	var metrics *service.MetricsService
	if cfg.Observability.MetricsEnabled {
		metrics = service.NewMetricsService()
	}

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, cfg.Redis.KeyPrefix)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	files, err := storage.NewLocalStorage(cfg.Materials.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare material storage", zap.Error(err))
	}
	signer := storage.NewDownloadSigner(cfg.Materials.SignedURLSecret, cfg.Materials.SignedURLTTL)

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	groups := repository.NewGroupRepository(db)
	tasks := repository.NewTaskRepository(db)
	dashboards := repository.NewDashboardRepository(db)

	validate := validator.New()

	checker := service.NewAchievementChecker(repository.NewAchievementRepository(db), nil, metrics, cacheSvc, logr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Achievements.Async {
		queue := checker.Queue(jobs.Config{
			Workers:     cfg.Achievements.Workers,
			BufferSize:  256,
			MaxAttempts: cfg.Achievements.Attempts,
			Backoff:     time.Second,
			Logger:      logr,
		})
		metrics.TrackQueue("achievements", queue.Stats)
		queue.Start(context.Background())
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := queue.Stop(drainCtx); err != nil {
				logr.Warn("achievement queue did not drain", zap.Error(err))
			}
		}()
	}

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	dashboardSvc := service.NewDashboardService(dashboards, cacheSvc, metrics, logr, cfg.Dashboard.CacheTTL)
	studentSvc := service.NewStudentService(service.StudentStores{
		Courses:     courses,
		Enrollments: enrollments,
		Groups:      groups,
		Tasks:       tasks,
		Views:       repository.NewStudentRepository(db),
		Suggestions: dashboards,
	}, checker, cacheSvc, metrics, validate, logr, cfg.Dashboard.CacheTTL)
	exporter := service.NewExportService(logr, export.NewCSVExporter(), export.NewPDFExporter())
	teacherSvc := service.NewTeacherService(service.TeacherStores{
		Courses: courses,
		Tasks:   tasks,
		Views:   repository.NewTeacherRepository(db),
		Users:   users,
	}, exporter, cacheSvc, metrics, validate, logr, cfg.Dashboard.CacheTTL)
	materialSvc := service.NewMaterialService(repository.NewMaterialRepository(db), courses, enrollments, files, signer, service.MaterialConfig{
		APIPrefix:    cfg.APIPrefix,
		MaxFileSize:  cfg.Materials.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Materials.AllowedMIMEs,
	}, metrics, validate, logr)
	contactSvc := service.NewContactService(repository.NewContactRepository(db), metrics, validate, logr)

	engine := router.New(router.Options{
		APIPrefix:        cfg.APIPrefix,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		EnforceOwnership: cfg.Dashboard.EnforceOwnership,
		MetricsEnabled:   cfg.Observability.MetricsEnabled,
		DocsEnabled:      cfg.Observability.DocsEnabled,
	}, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Student:   handler.NewStudentHandler(studentSvc),
		Teacher:   handler.NewTeacherHandler(teacherSvc),
		Material:  handler.NewMaterialHandler(materialSvc),
		Contact:   handler.NewContactHandler(contactSvc),
		Metrics:   handler.NewMetricsHandler(metrics, db),
	}, router.Dependencies{
		Tokens:   authSvc,
		Audit:    users,
		Observer: metrics,
		Logger:   logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
