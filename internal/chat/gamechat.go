package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"rpg-creator/shared/models"

	"go.uber.org/zap"
)

var _ Generator = (*GameChatGenerator)(nil)

// GameChatGenerator шлет POST {messages} и ждет {message}.
type GameChatGenerator struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewGameChatGenerator(endpoint string, timeout time.Duration, logger *zap.Logger) *GameChatGenerator {
	return &GameChatGenerator{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("GameChatGenerator"),
	}
}

func (g *GameChatGenerator) Name() string { return ProviderGameChat }

type gameChatRequest struct {
	Messages []gameChatMessage `json:"messages"`
}

type gameChatMessage struct {
	Role    models.ChatRole `json:"role"`
	Content string          `json:"content"`
}

type gameChatResponse struct {
	Message string `json:"message"`
}

func (g *GameChatGenerator) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	payload := gameChatRequest{Messages: make([]gameChatMessage, 0, len(messages))}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, gameChatMessage{Role: m.Role, Content: m.Content})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", remoteError("encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", remoteError("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("Ошибка запроса к генератору", zap.String("endpoint", g.endpoint), zap.Error(err))
		return "", remoteError("request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", remoteError("read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Warn("Генератор вернул ошибку", zap.Int("status", resp.StatusCode), zap.Int("bodyBytes", len(raw)))
		return "", remoteError("unexpected status %d", resp.StatusCode)
	}

	var out gameChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", remoteError("decode response: %v", err)
	}
	if strings.TrimSpace(out.Message) == "" {
		return "", remoteError("empty message")
	}
	return out.Message, nil
}
