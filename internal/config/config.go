package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rpg-creator/shared/database"
	"rpg-creator/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые хранилища устройств.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Поддерживаемые генераторы текста.
const (
	AIProviderGameChat = "gamechat"
	AIProviderOpenAI   = "openai"
	AIProviderOllama   = "ollama"
)

// Config содержит конфигурацию сервиса RPG Creator.
type Config struct {
	// Настройки сервера
	Port               string   `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding        string   `envconfig:"LOG_ENCODING" default:"json"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Хранилище устройств
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"memory"`

	// Redis
	RedisAddr      string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`
	RedisKeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"rpg"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"rpg_creator"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string `ignored:"true"`

	// SQLite
	SQLitePath string `envconfig:"SQLITE_PATH" default:"rpg-creator.db"`

	// Сессия и проигрывание
	AuthLatency      time.Duration `envconfig:"AUTH_LATENCY" default:"1s"`
	PasswordHashCost int           `envconfig:"PASSWORD_HASH_COST" default:"10"`
	TransitionDelay  time.Duration `envconfig:"PLAYBACK_TRANSITION_DELAY" default:"2s"`
	SessionIdleTTL   time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`

	// Генерация текста
	AIProvider string        `envconfig:"AI_PROVIDER" default:"gamechat"`
	AIEndpoint string        `envconfig:"AI_ENDPOINT" default:"https://www.infinityg.ai/api/gameChat"`
	AIAPIKey   string        `envconfig:"AI_API_KEY"`
	AIModel    string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AIBaseURL  string        `envconfig:"AI_BASE_URL"`
	AITimeout  time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`

	// Кошелек
	WalletRPCURL string `envconfig:"WALLET_RPC_URL"`

	// RabbitMQ (пустой URL отключает публикацию событий)
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`
	EventsQueue string `envconfig:"EVENTS_QUEUE" default:"platform_events"`

	// Токены устройств
	DeviceTokenTTL time.Duration `envconfig:"DEVICE_TOKEN_TTL" default:"8760h"`
	// Секретное поле БЕЗ envconfig тега
	DeviceTokenSecret string `ignored:"true"`
}

// PgConfig возвращает параметры подключения к PostgreSQL.
func (c *Config) PgConfig() database.PgConfig {
	return database.PgConfig{
		Host:           c.DBHost,
		Port:           c.DBPort,
		User:           c.DBUser,
		Password:       c.DBPassword,
		Name:           c.DBName,
		SSLMode:        c.DBSSLMode,
		MaxConnections: c.DBMaxConns,
		MaxIdleTime:    c.DBIdleTimeout,
	}
}

// Validate проверяет значения, которые envconfig проверить не может.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageRedis, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.AIProvider {
	case AIProviderGameChat, AIProviderOpenAI, AIProviderOllama:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider)
	}
	if c.AIProvider == AIProviderOpenAI && c.AIAPIKey == "" {
		return errors.New("AI_API_KEY is required for the openai provider")
	}
	if c.PasswordHashCost < 4 || c.PasswordHashCost > 31 {
		return fmt.Errorf("PASSWORD_HASH_COST must be between 4 and 31, got %d", c.PasswordHashCost)
	}
	if c.AuthLatency < 0 || c.TransitionDelay < 0 {
		return errors.New("AUTH_LATENCY and PLAYBACK_TRANSITION_DELAY must not be negative")
	}
	if c.DeviceTokenSecret == "" {
		return errors.New("device token secret is empty")
	}
	return nil
}

// LoadConfig загружает конфигурацию из .env, переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации rpg-creator: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)
	cfg.AIProvider = strings.ToLower(cfg.AIProvider)

	var loadErr error
	cfg.DeviceTokenSecret, loadErr = utils.ReadSecretOrEnv("device_token_secret", "DEVICE_TOKEN_SECRET")
	if loadErr != nil {
		return nil, loadErr
	}
	if cfg.StorageBackend == StoragePostgres {
		cfg.DBPassword, loadErr = utils.ReadSecretOrEnv("db_password", "DB_PASSWORD")
		if loadErr != nil {
			return nil, loadErr
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("невалидная конфигурация: %w", err)
	}

	log.Printf("Конфигурация RPG Creator загружена:")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  Storage: %s", cfg.StorageBackend)
	log.Printf("  AI Provider: %s (timeout %v)", cfg.AIProvider, cfg.AITimeout)
	log.Printf("  Auth latency: %v, transition delay: %v", cfg.AuthLatency, cfg.TransitionDelay)
	if cfg.RabbitMQURL == "" {
		log.Println("  RabbitMQ: [ОТКЛЮЧЕН]")
	} else {
		log.Printf("  RabbitMQ events queue: %s", cfg.EventsQueue)
	}
	log.Println("  Device Token Secret: [ЗАГРУЖЕН]")

	return &cfg, nil
}
