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

	"novel-relay/internal/authutils"
	"novel-relay/internal/cache"
	"novel-relay/internal/config"
	"novel-relay/internal/database"
	"novel-relay/internal/handler"
	"novel-relay/internal/logger"
	"novel-relay/internal/messaging"
	"novel-relay/internal/metrics"
	"novel-relay/internal/middleware"
	"novel-relay/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Rounds Service...")

	// Конфиг нужен до логгера: уровень берём из него
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	dbPool, err := setupDatabase(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	appLogger.Info("Connected to PostgreSQL")

	if err := database.ApplyMigrations(dbPool, appLogger); err != nil {
		appLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbitConn.Close()
	appLogger.Info("Connected to RabbitMQ")

	redisClient, err := cache.Connect(context.Background(), &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, 5, 2*time.Second, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	roundMetrics := metrics.NewCollector(registry)

	// Репозитории и сервисы
	txManager := database.NewTxManager(dbPool, appLogger)
	repos := database.NewRepositories(dbPool, appLogger)

	eventPublisher, err := messaging.NewRoundEventPublisher(rabbitConn, cfg.RoundEventsQueue, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create round event publisher", zap.Error(err))
	}

	roundService := service.NewRoundService(txManager, repos, eventPublisher, roundMetrics, appLogger)
	historyService := service.NewHistoryService(repos.History, appLogger)
	voteRecordService := service.NewVoteRecordService(repos.VoteRecords, appLogger)

	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create JWT verifier", zap.Error(err))
	}

	voteLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.VoteRateLimit),
		Burst: cfg.VoteRateBurst,
	}, appLogger)
	defer voteLimiter.Stop()

	roundHandler := handler.NewRoundHandler(roundService, historyService, voteRecordService, verifier.VerifyToken, voteLimiter, appLogger)

	// Консьюмер запросов на закрытие раунда
	closeProcessor := messaging.NewCloseRequestProcessor(
		roundService,
		cache.NewRedisIdempotencyStore(redisClient, appLogger),
		cfg.IdempotencyTTL,
		roundMetrics,
		appLogger,
	)
	closeConsumer := messaging.NewCloseRequestConsumer(rabbitConn, closeProcessor, cfg.RoundCloseRequestQueue, appLogger)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		appLogger.Info("Starting round close request consumer")
		if err := closeConsumer.StartConsuming(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Round close request consumer stopped with error", zap.Error(err))
		}
		appLogger.Info("Round close request consumer stopped")
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.EchoZapLogger(appLogger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	handler.RegisterSystemRoutes(e, registry)
	roundHandler.RegisterRoutes(e)

	go func() {
		appLogger.Info("Rounds server listening", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutdown signal received")

	closeConsumer.Stop()
	cancelConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		appLogger.Error("Echo graceful shutdown failed", zap.Error(err))
	}

	appLogger.Info("Rounds Service stopped")
}

// setupDatabase создаёт пул соединений и проверяет подключение.
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err = dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД (ping failed): %w", err)
	}
	return dbPool, nil
}

// connectRabbitMQ подключается к RabbitMQ с несколькими попытками.
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
