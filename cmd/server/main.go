// Package main runs the estates HTTP server with graceful shutdown.
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

	"github.com/eros-estates/backend/config"
	"github.com/eros-estates/backend/internal/auth"
	"github.com/eros-estates/backend/internal/emaillogs"
	"github.com/eros-estates/backend/internal/estates"
	"github.com/eros-estates/backend/internal/invitations"
	"github.com/eros-estates/backend/internal/middleware"
	"github.com/eros-estates/backend/internal/roles"
	"github.com/eros-estates/backend/pkg/database"
	"github.com/eros-estates/backend/pkg/queue"
	"github.com/eros-estates/backend/pkg/redis"
	"github.com/eros-estates/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Estates and roles
	estateRepo := estates.NewRepository(pool)
	estateHandler := estates.NewHandler(estateRepo, logger)
	roleRepo := roles.NewRepository(pool)
	roleHandler := roles.NewHandler(roleRepo)

	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo)

	// Invitations
	var sender invitations.Sender
	switch cfg.Invitation.Delivery {
	case config.DeliveryQueue:
		rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		jobQueue := queue.NewQueue(rdb.Client, logger)
		sender = invitations.NewQueueSender(jobQueue, emailLogsRepo, invitations.NewRenderer(cfg.Invitation.AcceptURL), logger)
	default:
		sender = invitations.NewLogSender(logger)
	}
	codec := invitations.NewCodec(cfg.Invitation.Secret)
	invitationService := invitations.NewService(
		estateRepo,
		roleRepo,
		invitations.NewRepository(pool),
		invitations.NewMinter(codec),
		invitations.NewDispatcher(sender, cfg.Invitation.DispatchConcurrency, logger),
		logger,
	)
	invitationHandler := invitations.NewHandler(invitationService, codec, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public
	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/invitations/:code", invitationHandler.Validate)

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/users", middleware.RequireAdmin(), authHandler.List)
		api.GET("/users/:id/estates", estateHandler.ListForUser)

		api.POST("/estates", estateHandler.Create)
		api.GET("/estates/:id", estateHandler.Get)
		api.PATCH("/estates/:id", estateHandler.Update)
		api.DELETE("/estates/:id", estateHandler.Delete)
		api.GET("/estates/:id/members", estateHandler.ListMembers)
		api.POST("/estates/:id/invitations", invitationHandler.Send)
		api.GET("/estates/:id/emails", middleware.RequireAdmin(), emailLogsHandler.ListByEstate)

		api.GET("/roles", roleHandler.List)
		api.GET("/roles/:id", roleHandler.Get)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("invitation_delivery", cfg.Invitation.Delivery))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
