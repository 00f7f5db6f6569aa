package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	"go.uber.org/zap"
)

// state - то, что лежит под ключом rpg-chat.
// History уходит генератору (ввод с префиксом вида генерации), Transcript показывается автору.
type state struct {
	History    []models.ChatMessage `json:"history"`
	Transcript []models.ChatMessage `json:"transcript"`
}

// Reply - ответ на сообщение автора.
type Reply struct {
	Message models.ChatMessage `json:"message"`
	// Failed - генератор не ответил, Message содержит извинение.
	Failed bool `json:"failed"`
}

// Export - выгрузка одного сообщения.
type Export struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Service ведет разговор устройства с генератором.
type Service struct {
	mu        sync.Mutex
	storage   interfaces.DeviceStorage
	generator Generator
	tokens    TokenCounter
	now       func() time.Time
	logger    *zap.Logger
}

// NewService создает сервис. tokens может быть nil.
func NewService(storage interfaces.DeviceStorage, generator Generator, tokens TokenCounter, logger *zap.Logger) *Service {
	return &Service{
		storage:   storage,
		generator: generator,
		tokens:    tokens,
		now:       time.Now,
		logger:    logger.Named("ChatService"),
	}
}

func (s *Service) load(ctx context.Context, deviceID string) (*state, error) {
	st := &state{}
	if _, err := interfaces.LoadJSON(ctx, s.storage, deviceID, constants.StorageKeyChat, st); err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	if st.History == nil {
		st.History = []models.ChatMessage{}
	}
	if st.Transcript == nil {
		st.Transcript = []models.ChatMessage{}
	}
	return st, nil
}

func (s *Service) save(ctx context.Context, deviceID string, st *state) error {
	if err := interfaces.SaveJSON(ctx, s.storage, deviceID, constants.StorageKeyChat, st); err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}
	return nil
}

// Send отправляет ввод автора генератору. Ошибка генератора не возвращается:
// в историю попадает извинение, а Reply.Failed выставляется в true.
func (s *Service) Send(ctx context.Context, deviceID, typeID, input string) (*Reply, error) {
	if strings.TrimSpace(input) == "" {
		return nil, models.NewValidationError(models.ValidationFillAllFields)
	}
	if typeID == "" {
		typeID = DefaultGenerationType
	}
	genType, ok := FindGenerationType(typeID)
	if !ok {
		return nil, fmt.Errorf("unknown generation type %q: %w", typeID, models.ErrValidationFailed)
	}

	s.mu.Lock()
	st, err := s.load(ctx, deviceID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	conversation := restoreConversation(Persona, st.History)
	conversation.AddMessage(models.ChatRoleUser, genType.Prompt+" "+input)
	st.History = conversation.History()
	st.Transcript = append(st.Transcript, models.ChatMessage{Role: models.ChatRoleUser, Content: input, Type: genType.ID})
	if err := s.save(ctx, deviceID, st); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	messages := conversation.Messages()
	s.observeTokens(messages)

	start := time.Now()
	text, genErr := s.generator.Generate(ctx, messages)
	aiRequestDuration.WithLabelValues(s.generator.Name()).Observe(time.Since(start).Seconds())

	reply := &Reply{Message: models.ChatMessage{Role: models.ChatRoleAssistant, Content: text, Type: genType.ID}}
	if genErr != nil {
		aiRequestsTotal.WithLabelValues(s.generator.Name(), "error").Inc()
		s.logger.Warn("Генератор не ответил", zap.String("deviceID", deviceID), zap.String("type", genType.ID), zap.Error(genErr))
		reply.Message.Content = ApologyMessage
		reply.Failed = true
	} else {
		aiRequestsTotal.WithLabelValues(s.generator.Name(), "success").Inc()
	}

	// ответ сохраняется, даже если клиент уже ушел
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err = s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !reply.Failed {
		st.History = append(st.History, models.ChatMessage{Role: models.ChatRoleAssistant, Content: text})
	}
	st.Transcript = append(st.Transcript, reply.Message)
	if err := s.save(ctx, deviceID, st); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *Service) observeTokens(messages []models.ChatMessage) {
	if s.tokens == nil {
		return
	}
	n, err := s.tokens.Count(messages)
	if err != nil {
		return
	}
	aiPromptTokens.WithLabelValues(s.generator.Name()).Observe(float64(n))
}

// Transcript возвращает сообщения в том виде, в котором их видел автор.
func (s *Service) Transcript(ctx context.Context, deviceID string) ([]models.ChatMessage, error) {
	st, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return st.Transcript, nil
}

// Clear очищает разговор; системное сообщение восстанавливается при следующем Send.
func (s *Service) Clear(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.RemoveItem(ctx, deviceID, constants.StorageKeyChat); err != nil {
		return fmt.Errorf("failed to clear chat: %w", err)
	}
	return nil
}

// Export выгружает сообщение истории по индексу.
func (s *Service) Export(ctx context.Context, deviceID string, index int) (*Export, error) {
	st, err := s.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(st.Transcript) {
		return nil, fmt.Errorf("message %d: %w", index, models.ErrNotFound)
	}
	m := st.Transcript[index]
	return &Export{Type: m.Type, Content: m.Content, Timestamp: s.now().UTC()}, nil
}
