package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/e-games-api/internal/config"
	"github.com/flicky/e-games-api/internal/handler"
	"github.com/flicky/e-games-api/internal/identity"
	"github.com/flicky/e-games-api/internal/mailer"
	"github.com/flicky/e-games-api/internal/middleware"
	"github.com/flicky/e-games-api/internal/repository"
	"github.com/flicky/e-games-api/internal/service"
	"github.com/flicky/e-games-api/internal/telemetry"
	"github.com/flicky/e-games-api/internal/uploader"
	"github.com/flicky/e-games-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Error("setup telemetry", "error", err)
		os.Exit(1)
	}

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	if cfg.DB.Migrate {
		if err := repository.Migrate(ctx, dbPool); err != nil {
			log.Error("apply schema", "error", err)
			os.Exit(1)
		}
		log.Info("schema applied")
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Mail
	var mail mailer.Mailer = mailer.NewLogMailer(log)
	if cfg.SMTP.Enabled {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	}

	// Images
	var images uploader.ImageUploader = uploader.NewLogUploader(log)
	if cfg.Images.CloudinaryURL != "" {
		cld, err := uploader.NewCloudinaryUploader(cfg.Images)
		if err != nil {
			log.Error("setup cloudinary", "error", err)
			os.Exit(1)
		}
		images = cld
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	ratingRepo := repository.NewRatingRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// Services
	tokens := identity.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	authSvc := service.NewAuthService(userRepo, tokens, mail, log)
	productSvc := service.NewProductService(productRepo, redisClient)
	ratingSvc := service.NewRatingService(productRepo, ratingRepo, redisClient)
	orderSvc := service.NewOrderService(orderRepo, productRepo, worker.NewAMQPPublisher(amqpCh), log)
	userSvc := service.NewUserService(userRepo)

	if cfg.Admin.Enabled() {
		if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Error("seed admin", "error", err)
			os.Exit(1)
		}
		log.Info("admin account ready", "email", cfg.Admin.Email)
	}

	// Worker
	purchaseWorker := worker.NewPurchaseWorker(amqpCh, orderRepo, userRepo, mail, redisClient, log)
	if err := purchaseWorker.Start(ctx); err != nil {
		log.Error("start purchase worker", "error", err)
		os.Exit(1)
	}

	// Router
	if err := handler.RegisterValidators(); err != nil {
		log.Error("register validators", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	handler.RegisterRoutes(router, handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Product: handler.NewProductHandler(productSvc, images, cfg.Images.MaxSize),
		Rating:  handler.NewRatingHandler(ratingSvc),
		Order:   handler.NewOrderHandler(orderSvc),
		User:    handler.NewUserHandler(userSvc),
		Health:  handler.NewHealthHandler(dbPool, redisClient, amqpConn),
	}, tokens)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      telemetry.WrapHandler(router, cfg.Telemetry.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	purchaseWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracer shutdown", "error", err)
	}
	log.Info("server stopped")
}
