package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"primetrade-server/internal/config"
	"primetrade-server/internal/database"
	"primetrade-server/internal/handler"
	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/logger"
	"primetrade-server/internal/messaging"
	"primetrade-server/internal/middleware"
	"primetrade-server/internal/security"
	"primetrade-server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

const (
	serviceName       = "primetrade-server"
	rabbitMaxRetries  = 10
	rabbitRetryDelay  = 3 * time.Second
	seedAdminTimeout  = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	defaultCORSOrigin = "http://localhost:3000"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		ServiceName: serviceName,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))
	if warnings, _ := cfg.Validate(); len(warnings) > 0 {
		for _, w := range warnings {
			zap.L().Warn("Configuration warning", zap.String("warning", w))
		}
	}
	zap.L().Info("Configuration loaded", zap.String("env", cfg.Env), zap.String("port", cfg.ServerPort))

	// --- External Connections ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DSN()
	pgPool, err := database.Connect(ctx, database.PoolConfig{
		DSN:             dsn,
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBIdleTimeout,
	}, log)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	if cfg.MigrateOnStart {
		if err := database.ApplyMigrations(dsn, log); err != nil {
			zap.L().Fatal("Failed to apply database migrations", zap.Error(err))
		}
	}

	var activity interfaces.ActivityPublisher = messaging.NewNoopActivityPublisher(log)
	if cfg.RabbitMQURL != "" {
		mqConn, err := messaging.Connect(ctx, cfg.RabbitMQURL, rabbitMaxRetries, rabbitRetryDelay, log)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		publisher, err := messaging.NewRabbitActivityPublisher(mqConn, cfg.ActivityQueue, log)
		if err != nil {
			zap.L().Fatal("Failed to create activity publisher", zap.Error(err))
		}
		defer publisher.Close()
		activity = publisher
		zap.L().Info("Activity events enabled", zap.String("queue", cfg.ActivityQueue))
	} else {
		zap.L().Info("RABBITMQ_URL not set, activity events are disabled")
	}

	// --- Dependency Injection ---
	hasher := security.NewPasswordHasher(cfg.PasswordPepper, cfg.BcryptCost)
	codec, err := security.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTAlgorithm, cfg.AccessTokenTTL())
	if err != nil {
		zap.L().Fatal("Failed to create token codec", zap.Error(err))
	}

	userRepo := database.NewPgUserRepository(pgPool, log)
	itemRepo := database.NewPgItemRepository(pgPool, log)
	taskRepo := database.NewPgTaskRepository(pgPool, log)

	authSvc := service.NewAuthService(userRepo, hasher, codec, activity, log)
	guard := service.NewAccessGuard(userRepo, codec, log)
	userSvc := service.NewUserService(userRepo, hasher, activity, log)
	itemSvc := service.NewItemService(itemRepo, log)
	taskSvc := service.NewTaskService(taskRepo, log)

	if cfg.AdminEmail != "" {
		seedCtx, seedCancel := context.WithTimeout(ctx, seedAdminTimeout)
		if _, err := authSvc.SeedAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			zap.L().Error("Failed to seed admin account", zap.Error(err))
		}
		seedCancel()
	}

	apiHandler := handler.NewHandler(authSvc, guard, userSvc, itemSvc, taskSvc, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{defaultCORSOrigin}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", defaultCORSOrigin))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	apiHandler.RegisterRoutes(router)

	// Prometheus middleware применяем ПОСЛЕ регистрации роутов
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}
