package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rpg-creator/shared/models"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

var _ Generator = (*OllamaGenerator)(nil)

// OllamaGenerator ходит в нативный API Ollama без стриминга.
type OllamaGenerator struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

func NewOllamaGenerator(baseURL, model string, timeout time.Duration, logger *zap.Logger) (*OllamaGenerator, error) {
	base := strings.TrimSuffix(strings.TrimSuffix(baseURL, "/v1"), "/")
	if base == "" {
		base = "http://localhost:11434"
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", base, err)
	}
	logger = logger.Named("OllamaGenerator")
	logger.Info("Ollama клиент создан", zap.String("baseURL", base), zap.String("model", model), zap.Duration("timeout", timeout))
	return &OllamaGenerator{
		client: api.NewClient(parsed, &http.Client{Timeout: timeout}),
		model:  model,
		logger: logger,
	}, nil
}

func (g *OllamaGenerator) Name() string { return ProviderOllama }

func (g *OllamaGenerator) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    g.model,
		Messages: make([]api.Message, 0, len(messages)),
		Stream:   &stream,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, api.Message{Role: string(m.Role), Content: m.Content})
	}

	var last api.ChatResponse
	err := g.client.Chat(ctx, req, func(r api.ChatResponse) error {
		last = r
		return nil
	})
	if err != nil {
		g.logger.Warn("Ошибка от Ollama API", zap.String("model", g.model), zap.Error(err))
		return "", remoteError("ollama: %v", err)
	}
	if last.Message.Content == "" {
		return "", remoteError("ollama: empty response")
	}
	return last.Message.Content, nil
}
