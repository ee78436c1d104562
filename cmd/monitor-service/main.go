package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang-stock-tracker/internal/monitor/config"
	"golang-stock-tracker/internal/monitor/delivery/consumer"
	delivery "golang-stock-tracker/internal/monitor/delivery/http"
	_ "golang-stock-tracker/internal/monitor/docs"
	"golang-stock-tracker/internal/monitor/repository"
	"golang-stock-tracker/internal/monitor/service"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/postgres"
	"golang-stock-tracker/pkg/redis"
	"golang-stock-tracker/pkg/telegram"
	"golang-stock-tracker/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the post monitor service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	utils.SetPanicLogger(appLogger)

	appLogger.Info("Starting Monitor Service", logger.Field("name", cfg.App.Name))

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	var telegramBot telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		telegramBot, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChannelChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram bot", logger.ErrorField(err))
		}
	} else {
		appLogger.Warn("Telegram bot token is empty, notifications are disabled")
	}

	usageLocation := utils.LoadLocation(cfg.Usage.TimeZone)
	appLocation := utils.LoadLocation(cfg.App.TimeZone)

	// Initialize repositories
	postRepo := repository.NewPostRepository(db.DB)
	usageRepo := repository.NewUsageRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)
	notificationLogRepo := repository.NewNotificationLogRepository(db.DB)
	lockRepo := repository.NewBatchLockRepository(redisClient.Client)
	resultRepo := repository.NewBatchResultRepository(redisClient.Client)
	eventPublisher := repository.NewPostEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer eventPublisher.Close()
	priceSource, err := repository.NewYahooFinanceRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Yahoo Finance repository", logger.ErrorField(err))
	}

	// Initialize services
	evaluator := service.NewPriceEvaluator(service.EvaluatorOptions{CloseOnResolve: cfg.Monitor.CloseOnResolve})
	usageLedger := service.NewUsageLedger(usageRepo, cfg.Usage.DailyLimit, usageLocation)
	batchRunner := service.NewBatchRunner(cfg.Monitor, appLogger, evaluator, postRepo, priceSource, usageLedger, lockRepo, resultRepo, eventPublisher)
	notificationSvc := service.NewNotificationService(appLogger, batchRunner, userRepo, notificationLogRepo, telegramBot, cfg.Telegram.ChannelChatID)
	postSvc := service.NewPostService(appLogger, postRepo, eventPublisher)

	var redisConsumer *consumer.RedisConsumer
	var schedulerSvc service.SchedulerService
	if cfg.Scheduler.Enabled {
		if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamPostPriceCheck, common.RedisStreamGroup, "0").Err(); err != nil {
			if !strings.Contains(err.Error(), "BUSYGROUP") {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
			}
		}

		priceCheckTask := service.NewPriceCheckTaskService(cfg, appLogger, redisClient.Client, batchRunner, notificationSvc, telegramBot, appLocation)
		redisConsumer = consumer.NewRedisConsumer(cfg, priceCheckTask, appLogger)
		redisConsumer.Start(ctx)

		schedulerSvc = service.NewSchedulerService(postRepo, redisClient.Client, appLogger, cfg.Scheduler.CronExpression, cfg.Redis.StreamMaxLen, appLocation)
		if err := schedulerSvc.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
		}
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")
	ownerGroup := apiV1.Group("/owners/:owner_id")
	delivery.NewBatchHandler(batchRunner, usageLedger, appLogger).RegisterRoutes(ownerGroup)
	delivery.NewNotificationHandler(notificationSvc, appLogger).RegisterRoutes(ownerGroup)
	delivery.NewPostHandler(postSvc, appLogger).RegisterRoutes(ownerGroup)

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	if schedulerSvc != nil {
		schedulerSvc.Stop()
	}
	if redisConsumer != nil {
		redisConsumer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Post Monitor API
// @version 1.0
// @description Price monitoring and lifecycle tracking for trading posts.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "monitor-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-monitor.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing monitor-service CLI: %s\n", err)
		os.Exit(1)
	}
}
