package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-issue-api/api/swagger"
	"github.com/noah-isme/campus-issue-api/internal/handler"
	"github.com/noah-isme/campus-issue-api/internal/middleware"
	"github.com/noah-isme/campus-issue-api/internal/models"
	"github.com/noah-isme/campus-issue-api/internal/realtime"
	"github.com/noah-isme/campus-issue-api/internal/repository"
	"github.com/noah-isme/campus-issue-api/internal/service"
	"github.com/noah-isme/campus-issue-api/pkg/cache"
	"github.com/noah-isme/campus-issue-api/pkg/config"
	"github.com/noah-isme/campus-issue-api/pkg/database"
	"github.com/noah-isme/campus-issue-api/pkg/export"
	"github.com/noah-isme/campus-issue-api/pkg/logger"
	"github.com/noah-isme/campus-issue-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/campus-issue-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-issue-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-issue-api/pkg/storage"
)

// @title Campus Issue API
// @version 1.0.0
// @description Academic issue tracking for students, faculty and administrators
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	sugar := logr.Sugar()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Warnw("redis unavailable, caching and push disabled", "error", err)
		redisClient = nil
	}

	fileStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to init upload storage", "error", err)
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheEnabled := cfg.Analytics.CacheEnabled && redisClient != nil
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logr),
		metricsSvc, cfg.Analytics.CacheTTL, logr, cacheEnabled,
	)

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "campus-issue-api",
	})
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, logr)
	issueSvc := service.NewIssueService(issueRepo, userRepo, notificationSvc, auditRepo, validate, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metricsSvc, cfg.Analytics.CacheTTL, logr)
	reportSvc := service.NewReportService(analyticsSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, issueRepo, fileStore, auditRepo, cfg.Uploads, logr)
	userSvc := service.NewUserService(userRepo, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)

	var sender mailer.Sender = mailer.NopSender{}
	if cfg.SMTP.Enabled {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	}

	var pushClient = redisClient
	if !cfg.Push.Enabled {
		pushClient = nil
	}
	publisher := realtime.NewPublisher(pushClient, cfg.Push.Channel, logr)

	dispatcher := service.NewOutboxDispatcher(notificationRepo, userRepo, issueRepo, sender, publisher, service.DispatcherConfig{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		Concurrency:  cfg.Outbox.WorkerConcurrency,
		MaxAttempts:  cfg.Outbox.WorkerRetries,
		BaseURL:      cfg.SMTP.BaseURL,
	}, logr)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	issueHandler := handler.NewIssueHandler(issueSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, reportSvc)
	attachmentHandler := handler.NewAttachmentHandler(attachmentSvc)
	userHandler := handler.NewUserHandler(userSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("", middleware.JWT(authSvc))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	issues := api.Group("/issues", middleware.JWT(authSvc))
	{
		issues.GET("", issueHandler.List)
		issues.POST("", issueHandler.Create)
		issues.GET("/:id", issueHandler.Detail)
		issues.POST("/:id/assign", middleware.RequireRoles(models.RoleAdmin), issueHandler.Assign)
		issues.POST("/:id/status", issueHandler.UpdateStatus)
		issues.POST("/:id/escalate", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), issueHandler.Escalate)
		issues.POST("/:id/comments", issueHandler.AddComment)
		issues.POST("/:id/attachments", attachmentHandler.Upload)
	}

	attachments := api.Group("/attachments", middleware.JWT(authSvc))
	attachments.GET("/:id",
		middleware.Audit(auditRepo, "ATTACHMENT_DOWNLOAD", "attachment"),
		attachmentHandler.Download)

	notifications := api.Group("/notifications", middleware.JWT(authSvc))
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}

	analytics := api.Group("/analytics", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		analytics.GET("/issues-by-status", analyticsHandler.IssuesByStatus)
		analytics.GET("/issues-by-category", analyticsHandler.IssuesByCategory)
		analytics.GET("/resolution-time", analyticsHandler.ResolutionTime)
		analytics.GET("/faculty-performance", analyticsHandler.FacultyPerformance)
		analytics.GET("/trends", analyticsHandler.Trends)
		analytics.GET("/system", analyticsHandler.System)
		analytics.GET("/export", analyticsHandler.Export)
	}

	users := api.Group("/users", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		users.GET("", userHandler.List)
		users.GET("/faculty", userHandler.Faculty)
		users.GET("/:id", userHandler.Get)
	}

	api.GET("/audit-logs", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), auditHandler.List)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}
