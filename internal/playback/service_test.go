package playback

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"rpg-creator/internal/studio"
	"rpg-creator/shared/database"
	"rpg-creator/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, delay time.Duration) (*Service, studio.GameRepository) {
	t.Helper()
	storage := database.NewMemoryDeviceStorage()
	games := studio.NewGameRepository(storage)
	lib := MustLoadLibrary()
	engine := NewEngine(lib, NewRandomFallback(rand.NewPCG(3, 4)), delay, zap.NewNop())
	return NewService(engine, lib, games, NewSessionRepository(storage), zap.NewNop()), games
}

func TestServiceStartResolvesSavedGamesFirst(t *testing.T) {
	ctx := context.Background()
	svc, games := newTestService(t, 0)

	require.NoError(t, games.Append(ctx, "dev", models.Game{ID: "mine", Title: "Mine", Scenes: []models.Scene{}}))

	s, err := svc.Start(ctx, "dev", "mine")
	require.NoError(t, err)
	assert.Equal(t, SourceAuthored, s.Source)

	game, err := games.Get(ctx, "dev", "mine")
	require.NoError(t, err)
	assert.Equal(t, 1, game.PlayCount())

	// повторный Start продолжает сессию и не считает новый запуск
	_, err = svc.Start(ctx, "dev", "mine")
	require.NoError(t, err)
	game, _ = games.Get(ctx, "dev", "mine")
	assert.Equal(t, 1, game.PlayCount())

	_, err = svc.Start(ctx, "dev", "unknown")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestServiceChooseAndRestart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 0)

	_, err := svc.Choose(ctx, "dev", "1", 0)
	assert.ErrorIs(t, err, models.ErrSessionNotStarted)

	_, err = svc.Start(ctx, "dev", "1")
	require.NoError(t, err)

	s, err := svc.Choose(ctx, "dev", "1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.NodeIndex)
	assert.Contains(t, s.Node.Text, "fairy grove")

	stored, err := svc.Session(ctx, "dev", "1")
	require.NoError(t, err)
	assert.Equal(t, s.Log, stored.Log)

	s, err = svc.Restart(ctx, "dev", "1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.NodeIndex)
	assert.Empty(t, s.Log)
}

func TestServiceDeletedGameIsNotPlayable(t *testing.T) {
	ctx := context.Background()
	svc, games := newTestService(t, 0)

	require.NoError(t, games.Append(ctx, "dev", models.Game{ID: "mine", Title: "Mine", Scenes: []models.Scene{}}))
	_, err := svc.Start(ctx, "dev", "mine")
	require.NoError(t, err)

	require.NoError(t, games.Delete(ctx, "dev", "mine"))

	_, err = svc.Start(ctx, "dev", "mine")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Choose(ctx, "dev", "mine", 0)
	assert.Error(t, err)
	_, err = svc.Restart(ctx, "dev", "mine")
	assert.Error(t, err)

	// сессия стерта вместе с игрой
	_, err = svc.Session(ctx, "dev", "mine")
	assert.ErrorIs(t, err, models.ErrSessionNotStarted)
}

func TestServiceRejectsChoiceDuringTransition(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 200*time.Millisecond)

	_, err := svc.Start(ctx, "dev", "2")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Choose(ctx, "dev", "2", 0)
		done <- err
	}()

	require.Eventually(t, func() bool {
		s, err := svc.Session(ctx, "dev", "2")
		return err == nil && s.Phase == PhaseTransitioning
	}, time.Second, 5*time.Millisecond)

	_, err = svc.Choose(ctx, "dev", "2", 1)
	assert.ErrorIs(t, err, models.ErrTransitionInProgress)

	require.NoError(t, <-done)
	s, err := svc.Session(ctx, "dev", "2")
	require.NoError(t, err)
	assert.Equal(t, PhaseDisplaying, s.Phase)
	assert.Len(t, s.Log, 1)
}
