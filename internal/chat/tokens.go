package chat

import (
	"sync"

	"rpg-creator/shared/models"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// TokenCounter оценивает размер промпта в токенах.
type TokenCounter interface {
	Count(messages []models.ChatMessage) (int, error)
}

var _ TokenCounter = (*TiktokenCounter)(nil)

// TiktokenCounter лениво загружает кодировку модели (или cl100k_base, если модель неизвестна).
type TiktokenCounter struct {
	model  string
	once   sync.Once
	enc    *tiktoken.Tiktoken
	err    error
	logger *zap.Logger
}

func NewTiktokenCounter(model string, logger *zap.Logger) *TiktokenCounter {
	return &TiktokenCounter{model: model, logger: logger.Named("TokenCounter")}
}

func (c *TiktokenCounter) load() {
	c.enc, c.err = tiktoken.EncodingForModel(c.model)
	if c.err != nil {
		c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
	}
	if c.err != nil {
		c.logger.Warn("Токенизатор недоступен, оценка токенов отключена", zap.String("model", c.model), zap.Error(c.err))
	}
}

func (c *TiktokenCounter) Count(messages []models.ChatMessage) (int, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return 0, c.err
	}
	total := 0
	for _, m := range messages {
		total += len(c.enc.Encode(m.Content, nil, nil))
	}
	return total, nil
}
