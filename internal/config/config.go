package config

import (
	"fmt"
	"strings"
	"time"

	"novel-relay/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config - конфигурация сервиса раундов.
type Config struct {
	Port        string `envconfig:"ROUNDS_SERVER_PORT" default:"8085"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int32         `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"5m"`
	DBPassword    string        `ignored:"true"`

	// RabbitMQ
	RabbitMQURL            string `envconfig:"RABBITMQ_URL" required:"true"`
	RoundEventsQueue       string `envconfig:"ROUND_EVENTS_QUEUE" default:"round_events"`
	RoundCloseRequestQueue string `envconfig:"ROUND_CLOSE_REQUESTS_QUEUE" default:"round_close_requests"`

	// Redis для дедупликации запросов на закрытие раунда
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	RedisPassword  string        `ignored:"true"`

	// Лимит голосований на пользователя
	VoteRateLimit float64 `envconfig:"VOTE_RATE_LIMIT" default:"5"`
	VoteRateBurst int     `envconfig:"VOTE_RATE_BURST" default:"10"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	JWTSecret string `ignored:"true"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig читает переменные окружения и секреты db_password, jwt_secret.
// redis_password необязателен.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load rounds config: %w", err)
	}
	// required в envconfig пропускает пустое значение
	for name, value := range map[string]string{
		"DB_HOST":      cfg.DBHost,
		"DB_USER":      cfg.DBUser,
		"DB_NAME":      cfg.DBName,
		"RABBITMQ_URL": cfg.RabbitMQURL,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("required variable %s is empty", name)
		}
	}
	if cfg.VoteRateLimit <= 0 || cfg.VoteRateBurst <= 0 {
		return nil, fmt.Errorf("VOTE_RATE_LIMIT and VOTE_RATE_BURST must be positive")
	}

	var err error
	if cfg.DBPassword, err = utils.ReadSecret("db_password"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = utils.ReadSecret("jwt_secret"); err != nil {
		return nil, err
	}
	if password, err := utils.ReadSecret("redis_password"); err == nil {
		cfg.RedisPassword = password
	}
	return &cfg, nil
}
