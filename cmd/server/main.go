package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/propuestas-api/internal/config"
	"github.com/propuestas-api/internal/handler"
	"github.com/propuestas-api/internal/middleware"
	"github.com/propuestas-api/internal/models"
	"github.com/propuestas-api/internal/repository"
	"github.com/propuestas-api/internal/service"
	"github.com/propuestas-api/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, reading from environment")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	if err := middleware.InitLogger(cfg.Log.Dir); err != nil {
		logrus.Fatalf("failed to initialize logger: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	db, err := initDatabase(cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}

	if err := autoMigrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	rdb := initRedis(cfg)
	readCache := cache.New(rdb, time.Duration(cfg.Redis.TTLSecs)*time.Second)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT, cfg.Auth.BcryptCost)
	proposalService := service.NewProposalService(proposalRepo)
	voteService := service.NewVoteService(voteRepo, proposalRepo)
	userService := service.NewUserService(userRepo, proposalRepo, voteRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	proposalHandler := handler.NewProposalHandler(proposalService, voteService, readCache)
	voteHandler := handler.NewVoteHandler(voteService, readCache)
	userHandler := handler.NewUserHandler(userService, proposalService, readCache)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORS.Origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: cfg.CORS.Origin != "*",
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "proposal voting API up and running",
			"version": Version,
			"endpoints": gin.H{
				"auth":      "/api/auth",
				"proposals": "/api/proposals",
				"users":     "/api/users",
			},
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		authLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		authHandler.RegisterRoutes(api, middleware.RateLimit(authLimiter))

		authMW := middleware.AuthMiddleware(authService)
		optionalAuthMW := middleware.OptionalAuthMiddleware(authService)

		proposalHandler.RegisterRoutes(api, authMW, optionalAuthMW)
		voteHandler.RegisterRoutes(api, authMW)
		userHandler.RegisterRoutes(api, authMW)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "route not found",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logrus.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logrus.Warnf("error closing Redis connection: %v", err)
		}
	}

	logrus.Info("server exited properly")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	// TranslateError lets the repositories detect duplicate-key
	// violations as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// initRedis returns nil when Redis is disabled or unreachable; the
// read cache degrades to a no-op in that case.
func initRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Warnf("redis unreachable, proposal read cache disabled: %v", err)
		_ = rdb.Close()
		return nil
	}

	return rdb
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Proposal{},
		&models.Vote{},
	)
}
