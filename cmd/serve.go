package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/rapid_response_hub/internal/auth"
	"github.com/shenikar/rapid_response_hub/internal/config"
	v1 "github.com/shenikar/rapid_response_hub/internal/handler/http/v1"
	"github.com/shenikar/rapid_response_hub/internal/notifier"
	"github.com/shenikar/rapid_response_hub/internal/repository"
	"github.com/shenikar/rapid_response_hub/internal/service"
	"github.com/shenikar/rapid_response_hub/internal/webhook"
	"github.com/shenikar/rapid_response_hub/pkg/logger"
	"github.com/shenikar/rapid_response_hub/pkg/postgres"
	redisclient "github.com/shenikar/rapid_response_hub/pkg/redis"
	"github.com/urfave/cli/v2"

	_ "github.com/shenikar/rapid_response_hub/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Run migrations and start the HTTP server and webhook worker",
	Action: serve,
}

func serve(c *cli.Context) error {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		return err
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Email и SMS провайдеры
	dispatcher, err := notifier.NewDispatcher(cfg, log)
	if err != nil {
		return err
	}

	// Вебхуки о SOS сигналах уходят во внешний диспетчерский центр
	// Воркер запускается всегда: без WEBHOOK_URL он вычитывает очередь и пропускает доставку
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)
	if cfg.WebhookURL == "" {
		log.Warn("WEBHOOK_URL is not set, SOS webhook delivery is disabled")
	}
	webhook.NewWebhookWorker(redisClient, log, cfg).Start(ctx)

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, cfg.IncidentCacheTTL)
	userRepo := repository.NewUserRepository(dbpool)
	contactRepo := repository.NewContactRepository(dbpool)
	sosRepo := repository.NewSOSRepository(dbpool)
	notificationRepo := repository.NewNotificationRepository(dbpool)

	// Инициализация сервисов
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	services := v1.Services{
		Incidents:     service.NewIncidentService(incidentRepo, userRepo, notificationRepo, dispatcher, log),
		SOS:           service.NewSOSService(sosRepo, contactRepo, userRepo, notificationRepo, dispatcher, webhookPublisher, log),
		Contacts:      service.NewContactService(contactRepo, log),
		Notifications: service.NewNotificationService(notificationRepo, cfg.NotificationsLimit, log),
		Auth:          service.NewAuthService(userRepo, tokens, dispatcher, log),
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(services, tokens, log)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestIDMiddleware(), v1.CORSMiddleware(cfg.CORSOrigins))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	// Запуск сервера в горутине
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down server...")
	case err := <-serverErr:
		return fmt.Errorf("error starting HTTP server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}
