package chat

import (
	"context"
	"fmt"
	"time"

	"rpg-creator/shared/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Generator отправляет разговор удаленному генератору и возвращает ответ.
// Любая ошибка сети, статус не 2xx, битый или пустой ответ дают models.ErrRemoteCallFailed.
type Generator interface {
	Generate(ctx context.Context, messages []models.ChatMessage) (string, error)
	Name() string
}

// Провайдеры генерации.
const (
	ProviderGameChat = "gamechat"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// GeneratorConfig - параметры подключения к генератору.
type GeneratorConfig struct {
	Provider string
	Endpoint string // gamechat
	APIKey   string // openai
	BaseURL  string // openai, ollama
	Model    string
	Timeout  time.Duration
}

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpg_ai_requests_total",
			Help: "Total number of requests to the text generator.",
		},
		[]string{"provider", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpg_ai_request_duration_seconds",
			Help:    "Histogram of text generator request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpg_ai_prompt_tokens",
			Help:    "Histogram of estimated prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20), // 250, 500, ..., 5000
		},
		[]string{"provider"},
	)
)

// NewGenerator создает генератор по имени провайдера.
func NewGenerator(cfg GeneratorConfig, logger *zap.Logger) (Generator, error) {
	switch cfg.Provider {
	case ProviderGameChat, "":
		return NewGameChatGenerator(cfg.Endpoint, cfg.Timeout, logger), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, logger), nil
	case ProviderOllama:
		return NewOllamaGenerator(cfg.BaseURL, cfg.Model, cfg.Timeout, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func remoteError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrRemoteCallFailed, fmt.Sprintf(format, args...))
}
