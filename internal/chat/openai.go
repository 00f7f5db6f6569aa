package chat

import (
	"context"
	"net/http"
	"time"

	"rpg-creator/shared/models"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var _ Generator = (*OpenAIGenerator)(nil)

// OpenAIGenerator ходит в любой OpenAI-совместимый chat completions API.
type OpenAIGenerator struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIGenerator(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) *OpenAIGenerator {
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	logger = logger.Named("OpenAIGenerator")
	logger.Info("OpenAI клиент создан", zap.String("baseURL", cfg.BaseURL), zap.String("model", model), zap.Duration("timeout", timeout))
	return &OpenAIGenerator{
		client: openaigo.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (g *OpenAIGenerator) Name() string { return ProviderOpenAI }

func (g *OpenAIGenerator) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	req := openaigo.ChatCompletionRequest{
		Model:    g.model,
		Messages: make([]openaigo.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openaigo.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.logger.Warn("Ошибка от OpenAI API", zap.String("model", g.model), zap.Error(err))
		return "", remoteError("openai: %v", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", remoteError("openai: empty response")
	}
	if resp.Usage.TotalTokens > 0 {
		g.logger.Debug("OpenAI usage",
			zap.Int("promptTokens", resp.Usage.PromptTokens),
			zap.Int("completionTokens", resp.Usage.CompletionTokens))
	}
	return resp.Choices[0].Message.Content, nil
}
