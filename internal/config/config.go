package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	MigrationsPath  string        `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS"`

	// Redis Config
	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass        string        `envconfig:"REDIS_PASSWORD"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	IncidentCacheTTL time.Duration `envconfig:"INCIDENT_CACHE_TTL" default:"5m"`

	// Webhook Config
	WebhookURL        string        `envconfig:"WEBHOOK_URL"`
	WebhookSecret     string        `envconfig:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"5s"`
	WebhookMaxRetries int           `envconfig:"WEBHOOK_MAX_RETRIES" default:"3"`
	WebhookBaseDelay  time.Duration `envconfig:"WEBHOOK_BASE_DELAY" default:"1s"`

	// JWT Config
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"168h"`

	// Notification Config
	SMTPHost           string        `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort           int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser           string        `envconfig:"SMTP_USER"`
	SMTPPass           string        `envconfig:"SMTP_PASS"`
	SMTPFrom           string        `envconfig:"SMTP_FROM"`
	TwilioAccountSID   string        `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string        `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber  string        `envconfig:"TWILIO_PHONE_NUMBER"`
	NotifyTimeout      time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
	NotificationsLimit int           `envconfig:"NOTIFICATIONS_DEFAULT_LIMIT" default:"20"`
}

// EmailEnabled сообщает, заданы ли учетные данные SMTP
func (c *Config) EmailEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

// SMSEnabled сообщает, настроен ли Twilio
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// required у envconfig ловит только отсутствующую переменную, пустую строку проверяем здесь
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	return cfg, nil
}
