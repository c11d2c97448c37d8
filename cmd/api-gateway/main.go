package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ecell-kiet/recruitment-api/api/swagger"
	"github.com/ecell-kiet/recruitment-api/internal/handler"
	"github.com/ecell-kiet/recruitment-api/internal/middleware"
	"github.com/ecell-kiet/recruitment-api/internal/models"
	"github.com/ecell-kiet/recruitment-api/internal/repository"
	"github.com/ecell-kiet/recruitment-api/internal/service"
	"github.com/ecell-kiet/recruitment-api/pkg/cache"
	"github.com/ecell-kiet/recruitment-api/pkg/config"
	"github.com/ecell-kiet/recruitment-api/pkg/database"
	"github.com/ecell-kiet/recruitment-api/pkg/logger"
	"github.com/ecell-kiet/recruitment-api/pkg/mailer"
	corsmiddleware "github.com/ecell-kiet/recruitment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ecell-kiet/recruitment-api/pkg/middleware/requestid"
)

// @title ECell Recruitment API
// @version 1.0.0
// @description Recruitment backend: applications, OTP login, and bulk interview-round scheduling
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	candidateRepo := repository.NewCandidateRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	summaryRepo := repository.NewEmailSummaryRepository(db)
	otpStore := repository.NewOTPStore(redisClient, cfg.OTP.TTL)

	mail := mailer.New(cfg.Mail, logr)

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	settingsSvc := service.NewSettingsService(settingsRepo, logr)
	candidateSvc := service.NewCandidateService(candidateRepo, settingsSvc, nil, logr)
	adminSvc := service.NewAdminService(adminRepo, nil, logr)
	exportSvc := service.NewExportService(candidateRepo, logr)

	authSvc := service.NewAuthService(candidateRepo, adminRepo, otpStore, mail, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		OTPMaxAttempts:     cfg.OTP.MaxAttempts,
		OTPBypassCode:      cfg.OTP.BypassCode,
	})

	order := service.IdentityOrder
	if cfg.Scheduler.Shuffle {
		order = service.ShuffleOrder(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	schedulerSvc := service.NewSchedulerService(candidateRepo, order, cfg.Scheduler.RestDay, logr)

	emailSvc := service.NewEmailService(mail, summaryRepo, candidateRepo, nil, logr, cfg.Emails.WorkerConcurrency)
	emailSvc.Start(ctx)
	defer emailSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	candidateHandler := handler.NewCandidateHandler(candidateSvc)
	scheduleHandler := handler.NewScheduleHandler(schedulerSvc, metricsSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	emailHandler := handler.NewEmailHandler(emailSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.RequestOTP)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	}

	superAdmin := middleware.RequireRoles(models.RoleSuperAdmin)

	candidates := api.Group("/candidates")
	{
		candidates.POST("", candidateHandler.Register)

		authed := candidates.Group("", middleware.JWT(authSvc))
		authed.GET("/me", candidateHandler.Me)
		authed.POST("/tasks/:email", candidateHandler.SubmitTask)

		admins := authed.Group("", middleware.RequireAdmin())
		admins.GET("", candidateHandler.List)
		admins.GET("/:id", candidateHandler.Get)
		admins.GET("/group/:number", candidateHandler.Group)
		admins.PUT("/attendance/:email", candidateHandler.Attendance)
		admins.PUT("/rounds/:round/:email",
			middleware.RequireRoundRole(),
			middleware.Audit(adminRepo, models.AuditActionRoundUpdate, "candidates", logr),
			candidateHandler.UpdateRound)

		super := authed.Group("", superAdmin)
		super.POST("/rounds/bulk",
			middleware.Audit(adminRepo, models.AuditActionBulkSchedule, "candidates", logr),
			scheduleHandler.BulkRounds)
		super.POST("/groups/move",
			middleware.Audit(adminRepo, models.AuditActionGroupMove, "candidates", logr),
			scheduleHandler.MoveGroups)
		super.POST("/shortlist",
			middleware.Audit(adminRepo, models.AuditActionShortlist, "candidates", logr),
			candidateHandler.Shortlist)
		super.POST("/slots",
			middleware.Audit(adminRepo, models.AuditActionSlotAssign, "candidates", logr),
			candidateHandler.AssignSlots)
		super.GET("/export", exportHandler.Candidates)
	}

	settings := api.Group("/settings", middleware.JWT(authSvc))
	{
		settings.GET("", settingsHandler.Get)
		settings.PUT("", superAdmin,
			middleware.Audit(adminRepo, models.AuditActionSettingsChange, "settings", logr),
			settingsHandler.Update)
		settings.POST("/toggle-result", superAdmin,
			middleware.Audit(adminRepo, models.AuditActionSettingsChange, "settings", logr),
			settingsHandler.ToggleResult)
	}

	adminRoutes := api.Group("/admins", middleware.JWT(authSvc), superAdmin)
	{
		adminRoutes.POST("",
			middleware.Audit(adminRepo, models.AuditActionAdminCreate, "admins", logr),
			adminHandler.Create)
		adminRoutes.GET("", adminHandler.List)
		adminRoutes.DELETE("/:id",
			middleware.Audit(adminRepo, models.AuditActionAdminDelete, "admins", logr),
			adminHandler.Deactivate)
	}

	emails := api.Group("/emails", middleware.JWT(authSvc), superAdmin)
	{
		emails.POST("/send",
			middleware.Audit(adminRepo, models.AuditActionEmailSend, "emails", logr),
			emailHandler.Send)
		emails.GET("/summaries", emailHandler.Summaries)
	}

	api.GET("/logs", middleware.JWT(authSvc), superAdmin, adminHandler.ActionLogs)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
