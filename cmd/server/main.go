// Package main runs the Meetvo HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meetvo/backend/config"
	"github.com/meetvo/backend/internal/analytics"
	"github.com/meetvo/backend/internal/attendance"
	"github.com/meetvo/backend/internal/auth"
	"github.com/meetvo/backend/internal/events"
	"github.com/meetvo/backend/internal/members"
	"github.com/meetvo/backend/internal/middleware"
	"github.com/meetvo/backend/internal/organizations"
	"github.com/meetvo/backend/internal/worker"
	"github.com/meetvo/backend/pkg/database"
	"github.com/meetvo/backend/pkg/queue"
	"github.com/meetvo/backend/pkg/redis"
	"github.com/meetvo/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Organizations
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, logger)
	requireOwner := organizations.RequireOwner(orgRepo)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)
	sweeper := events.NewSweeper(eventRepo, cfg.Sweep.Interval, logger)

	// Members
	registry := members.NewRegistry(pool)

	// Attendance (check-in writes enqueue member linking for the worker)
	attendanceRepo := attendance.NewRepository(pool)
	attendanceService := attendance.NewService(eventRepo, registry, attendanceRepo, jobQueue, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, attendanceRepo, logger)
	linkProcessor := worker.NewMemberLinkProcessor(registry, attendanceRepo, jobQueue, logger)

	// Analytics
	analyticsRepo := analytics.NewRepository(pool)
	engine := analytics.NewEngine(analyticsRepo)
	analyticsHandler := analytics.NewHandler(engine, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	v1 := router.Group("/v1")

	// Public: account creation, login, and attendee check-in
	v1.POST("/user/signup", authHandler.SignUp)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/attendance/:event_id", attendanceHandler.Record)

	// Protected API (JWT required)
	api := v1.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Organizations
		api.POST("/organization", orgHandler.Create)
		api.GET("/organization", orgHandler.List)
		api.GET("/organization/:organization_id", requireOwner, orgHandler.GetByID)
		api.PATCH("/organization/:organization_id", requireOwner, orgHandler.Update)
		api.DELETE("/organization/:organization_id", requireOwner, orgHandler.Delete)

		// Events (created under an organization, addressed by short code)
		api.POST("/organization/:organization_id/event", requireOwner, eventHandler.Create)
		api.GET("/organization/:organization_id/event", requireOwner, eventHandler.ListByOrganization)
		api.GET("/organization/:organization_id/event/active", requireOwner, eventHandler.ListActiveByOrganization)
		api.GET("/event/:event_id", eventHandler.GetByID)
		api.PATCH("/event/:event_id", eventHandler.Update)
		api.DELETE("/event/:event_id", eventHandler.Delete)
		api.POST("/event/:event_id/expire", eventHandler.Expire)

		// Attendance reads
		api.GET("/event/:event_id/attendance", attendanceHandler.ListByEvent)
		api.GET("/attendance/:id", attendanceHandler.GetByID)

		// Analytics
		api.GET("/analytics/member/:member_id/profile", analyticsHandler.MemberProfile)
		org := api.Group("/analytics/organization/:organization_id", requireOwner)
		{
			org.GET("", analyticsHandler.Members)
			org.GET("/trend", analyticsHandler.Trend)
			org.GET("/first-timers", analyticsHandler.FirstTimers)
			org.GET("/inactive", analyticsHandler.Inactive)
			org.GET("/gender", analyticsHandler.Gender)
			org.GET("/event-breakdown", analyticsHandler.EventBreakdown)
			org.GET("/unique-visitors", analyticsHandler.UniqueVisitors)
			org.GET("/retention", analyticsHandler.Retention)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background loops: member link worker and event expiry sweep
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go linkProcessor.Run(workerCtx)
	go sweeper.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
