package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Room        RoomConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// RoomConfig - границы времени жизни комнаты и лимиты сообщений
type RoomConfig struct {
	DefaultTTL   time.Duration
	MinTTL       time.Duration
	MaxTTL       time.Duration
	MaxSenderLen int
	MaxTextLen   int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Загрузка .env файла (если существует)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-in-production"),
			Issuer: getEnv("JWT_ISSUER", "ephemeral-chat"),
		},
		Room: RoomConfig{
			DefaultTTL:   getEnvAsDuration("ROOM_DEFAULT_TTL", 10*time.Minute),
			MinTTL:       getEnvAsDuration("ROOM_MIN_TTL", 1*time.Minute),
			MaxTTL:       getEnvAsDuration("ROOM_MAX_TTL", 120*time.Minute),
			MaxSenderLen: getEnvAsInt("ROOM_MAX_SENDER_LEN", 100),
			MaxTextLen:   getEnvAsInt("ROOM_MAX_TEXT_LEN", 1000),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 30),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret must be set")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address must be set")
	}
	if c.Room.MinTTL <= 0 || c.Room.MaxTTL < c.Room.MinTTL {
		return fmt.Errorf("invalid room TTL bounds")
	}
	if c.Room.DefaultTTL < c.Room.MinTTL || c.Room.DefaultTTL > c.Room.MaxTTL {
		return fmt.Errorf("room default TTL must be within [min, max]")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
