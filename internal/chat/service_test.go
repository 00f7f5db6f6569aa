package chat

import (
	"context"
	"testing"
	"time"

	"rpg-creator/shared/database"
	"rpg-creator/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, messages []models.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) Name() string { return "mock" }

func TestSendAppendsPrefixedPromptAndReply(t *testing.T) {
	ctx := context.Background()
	gen := new(mockGenerator)
	svc := NewService(database.NewMemoryDeviceStorage(), gen, nil, zap.NewNop())

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(msgs []models.ChatMessage) bool {
		return len(msgs) == 2 &&
			msgs[0].Role == models.ChatRoleSystem &&
			msgs[1].Content == "Create a detailed RPG character with a grumpy dwarf"
	})).Return("Borin, son of Gloin", nil).Once()

	reply, err := svc.Send(ctx, "dev", "character", "a grumpy dwarf")
	require.NoError(t, err)
	assert.False(t, reply.Failed)
	assert.Equal(t, models.ChatMessage{Role: models.ChatRoleAssistant, Content: "Borin, son of Gloin", Type: "character"}, reply.Message)

	// второй запрос видит предыдущий ответ в истории
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(msgs []models.ChatMessage) bool {
		return len(msgs) == 4 && msgs[2].Content == "Borin, son of Gloin"
	})).Return("A mountain hall", nil).Once()
	_, err = svc.Send(ctx, "dev", "location", "he lives in")
	require.NoError(t, err)

	transcript, err := svc.Transcript(ctx, "dev")
	require.NoError(t, err)
	require.Len(t, transcript, 4)
	assert.Equal(t, models.ChatMessage{Role: models.ChatRoleUser, Content: "a grumpy dwarf", Type: "character"}, transcript[0])
	gen.AssertExpectations(t)
}

func TestSendReturnsApologyOnFailure(t *testing.T) {
	ctx := context.Background()
	gen := new(mockGenerator)
	svc := NewService(database.NewMemoryDeviceStorage(), gen, nil, zap.NewNop())
	gen.On("Generate", mock.Anything, mock.Anything).Return("", models.ErrRemoteCallFailed)

	reply, err := svc.Send(ctx, "dev", "", "anything")
	require.NoError(t, err)
	assert.True(t, reply.Failed)
	assert.Equal(t, ApologyMessage, reply.Message.Content)
	assert.Equal(t, DefaultGenerationType, reply.Message.Type)

	transcript, err := svc.Transcript(ctx, "dev")
	require.NoError(t, err)
	assert.Len(t, transcript, 2)
}

func TestSendAfterFailureKeepsUnansweredPrompt(t *testing.T) {
	ctx := context.Background()
	gen := new(mockGenerator)
	svc := NewService(database.NewMemoryDeviceStorage(), gen, nil, zap.NewNop())

	gen.On("Generate", mock.Anything, mock.Anything).Return("", models.ErrRemoteCallFailed).Once()
	reply, err := svc.Send(ctx, "dev", "story", "first")
	require.NoError(t, err)
	require.True(t, reply.Failed)

	// неотвеченный запрос остается в истории, извинение туда не попадает
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(msgs []models.ChatMessage) bool {
		return len(msgs) == 3 &&
			msgs[1].Role == models.ChatRoleUser &&
			msgs[2].Role == models.ChatRoleUser
	})).Return("Once upon a time", nil).Once()
	reply, err = svc.Send(ctx, "dev", "story", "second")
	require.NoError(t, err)
	assert.False(t, reply.Failed)
	gen.AssertExpectations(t)
}

func TestSendValidation(t *testing.T) {
	svc := NewService(database.NewMemoryDeviceStorage(), new(mockGenerator), nil, zap.NewNop())

	_, err := svc.Send(context.Background(), "dev", "story", "   ")
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	_, err = svc.Send(context.Background(), "dev", "poem", "x")
	assert.ErrorIs(t, err, models.ErrValidationFailed)
}

func TestClearAndExport(t *testing.T) {
	ctx := context.Background()
	gen := new(mockGenerator)
	svc := NewService(database.NewMemoryDeviceStorage(), gen, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	gen.On("Generate", mock.Anything, mock.Anything).Return("An oasis", nil)

	_, err := svc.Send(ctx, "dev", "world", "sand")
	require.NoError(t, err)

	exp, err := svc.Export(ctx, "dev", 1)
	require.NoError(t, err)
	assert.Equal(t, Export{Type: "world", Content: "An oasis", Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}, *exp)
	_, err = svc.Export(ctx, "dev", 5)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.Clear(ctx, "dev"))
	transcript, err := svc.Transcript(ctx, "dev")
	require.NoError(t, err)
	assert.Empty(t, transcript)
}
