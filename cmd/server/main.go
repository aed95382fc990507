package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"ephemeral_chat/internal/config"
	"ephemeral_chat/internal/events"
	"ephemeral_chat/internal/handler"
	"ephemeral_chat/internal/middleware"
	"ephemeral_chat/internal/repository"
	"ephemeral_chat/internal/service"
	"ephemeral_chat/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к Redis - единственное хранилище состояния,
	// все ключи комнаты живут ровно столько, сколько комната
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Инициализация репозиториев
	repos := repository.NewRepositories(rdb, appLogger)

	// Канал событий комнат
	channel := events.NewRedisChannel(rdb, appLogger)

	// Инициализация сервисов
	services, err := service.NewServices(repos, channel, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to init services", "error", err)
	}

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, cfg.RateLimit, appLogger)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, channel, rdb, cfg, appLogger)

	// Настройка роутера
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	// Запуск HTTP сервера
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		rooms := v1.Group("/rooms")
		{
			// Публичные endpoints: создание, join и обратный отсчет
			// доступны до получения токена комнаты
			rooms.POST("", rateLimitMiddleware.Limit(), handlers.Room.Create)
			rooms.POST("/:id/join", rateLimitMiddleware.Limit(), handlers.Room.Join)
			rooms.GET("/:id/ttl", handlers.Room.GetTTL)

			// Все, что читает или меняет содержимое комнаты,
			// требует capability-токен этой комнаты
			authorized := rooms.Group("")
			authorized.Use(authMiddleware.RequireRoomAccess())
			{
				authorized.DELETE("/:id", handlers.Room.Destroy)
				authorized.POST("/:id/messages", rateLimitMiddleware.Limit(), handlers.Chat.SendMessage)
				authorized.GET("/:id/messages", handlers.Chat.GetMessages)
			}
		}
	}

	// WebSocket endpoint для событий комнаты
	router.GET("/ws/rooms/:id", authMiddleware.RequireRoomAccess(), handlers.WebSocket.HandleRoomEvents)

	return router
}
