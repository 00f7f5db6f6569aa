package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/database"
	"rpg-creator/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTranslator map[string]string

func (f fakeTranslator) T(_ context.Context, _ string, key string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return key
}

type recordingPublisher struct {
	events []models.PlatformEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.PlatformEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *recordingPublisher, *database.MemoryDeviceStorage) {
	t.Helper()
	storage := database.NewMemoryDeviceStorage()
	publisher := &recordingPublisher{}
	svc := NewService(storage, NewGameRepository(storage), fakeTranslator{
		"scenes":   "Scenes",
		"dialogue": "Dialogue",
		"combat":   "Combat",
	}, publisher, func(context.Context, string) string { return "user_1" }, zap.NewNop())

	tick := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, publisher, storage
}

func TestSceneAuthoringRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, storage := newTestService(t)

	_, err := svc.NewProject(ctx, "dev", "Quest", "A test quest")
	require.NoError(t, err)

	_, first, err := svc.CreateScene(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, "Scenes 1", first.Name)

	_, el1, err := svc.PlaceElement(ctx, "dev", models.ElementDialogue, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, "New Dialogue", el1.Content)
	_, el2, err := svc.PlaceElement(ctx, "dev", models.ElementCombat, -5, 1e6)
	require.NoError(t, err)

	_, second, err := svc.CreateScene(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, "Scenes 2", second.Name)
	_, el3, err := svc.PlaceElement(ctx, "dev", "trap", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "trap", el3.Name)
	assert.Equal(t, "New trap", el3.Content)

	// возвращаемся к первой сцене: ее элементы на месте
	project, err := svc.SelectScene(ctx, "dev", first.ID)
	require.NoError(t, err)
	require.Len(t, project.CurrentScene().Elements, 2)

	saved, err := svc.SaveGame(ctx, "dev")
	require.NoError(t, err)
	assert.Empty(t, saved.Status)
	assert.Equal(t, "user_1", saved.OwnerID)

	reloaded, err := NewGameRepository(storage).Get(ctx, "dev", saved.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Scenes, 2)
	assert.Equal(t, first.ID, reloaded.Scenes[0].ID)
	assert.Equal(t, second.ID, reloaded.Scenes[1].ID)
	require.Len(t, reloaded.Scenes[0].Elements, 2)
	assert.Equal(t, el1, reloaded.Scenes[0].Elements[0])
	assert.Equal(t, el2, reloaded.Scenes[0].Elements[1])
	assert.Equal(t, []models.PlacedElement{el3}, reloaded.Scenes[1].Elements)
}

func TestSaveGameTwiceCreatesTwoEntries(t *testing.T) {
	ctx := context.Background()
	svc, publisher, _ := newTestService(t)

	_, err := svc.NewProject(ctx, "dev", "Twice", "")
	require.NoError(t, err)

	a, err := svc.SaveGame(ctx, "dev")
	require.NoError(t, err)
	b, err := svc.SaveGame(ctx, "dev")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.CreatedAt, b.CreatedAt)

	dash, err := svc.Dashboard(ctx, "dev")
	require.NoError(t, err)
	assert.Len(t, dash.Projects, 2)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, models.EventGameSaved, publisher.events[0].Type)
	assert.Equal(t, a.ID, publisher.events[0].GameID)
}

func TestPlaceElementWithoutScene(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, _, err := svc.PlaceElement(context.Background(), "dev", models.ElementItem, 1, 1)
	assert.ErrorIs(t, err, models.ErrNoActiveScene)
}

func TestUpdateElementAndSelectUnknownScene(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, _, err := svc.CreateScene(ctx, "dev")
	require.NoError(t, err)
	_, el, err := svc.PlaceElement(ctx, "dev", models.ElementDialogue, 0, 0)
	require.NoError(t, err)

	project, updated, err := svc.UpdateElement(ctx, "dev", el.ID, "Hello, traveller")
	require.NoError(t, err)
	assert.Equal(t, "Hello, traveller", updated.Content)
	assert.Equal(t, "Hello, traveller", project.CurrentScene().Elements[0].Content)

	_, _, err = svc.UpdateElement(ctx, "dev", "missing", "x")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.SelectScene(ctx, "dev", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProjectsAreIsolatedPerDevice(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.SetDetails(ctx, "a", "Mine", "desc")
	require.NoError(t, err)

	other, err := svc.Project(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, other.Game.Title)
	assert.NotNil(t, other.Game.Scenes)
}

func TestPublishAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, publisher, _ := newTestService(t)

	_, err := svc.NewProject(ctx, "dev", "Pub", "")
	require.NoError(t, err)
	saved, err := svc.SaveGame(ctx, "dev")
	require.NoError(t, err)

	published, err := svc.Publish(ctx, "dev", saved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	_, err = svc.Publish(ctx, "dev", "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "dev", saved.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "dev", saved.ID), models.ErrNotFound)

	types := make([]models.PlatformEventType, 0, len(publisher.events))
	for _, e := range publisher.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []models.PlatformEventType{models.EventGameSaved, models.EventGamePublished, models.EventGameDeleted}, types)
}

func TestDeleteRemovesPlaySession(t *testing.T) {
	ctx := context.Background()
	svc, _, storage := newTestService(t)

	_, err := svc.NewProject(ctx, "dev", "Doomed", "")
	require.NoError(t, err)
	saved, err := svc.SaveGame(ctx, "dev")
	require.NoError(t, err)
	require.NoError(t, storage.SetItem(ctx, "dev", constants.PlayKey(saved.ID), `{"gameId":"`+saved.ID+`"}`))

	require.NoError(t, svc.Delete(ctx, "dev", saved.ID))

	_, err = storage.GetItem(ctx, "dev", constants.PlayKey(saved.ID))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPublisherFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	svc, publisher, _ := newTestService(t)
	publisher.err = errors.New("broker down")

	_, err := svc.SaveGame(ctx, "dev")
	assert.NoError(t, err)
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, DashboardStats{AverageRating: "0.0"}, ComputeStats(nil))

	games := []models.Game{
		{Plays: models.IntPtr(10), Rating: models.Float64Ptr(4.5)},
		{Status: models.GameStatusActive, Plays: models.IntPtr(5)},
		{Status: models.GameStatusPublished, Rating: models.Float64Ptr(3.0)},
	}
	stats := ComputeStats(games)
	assert.Equal(t, 3, stats.TotalGames)
	assert.Equal(t, 15, stats.TotalPlays)
	assert.Equal(t, "2.5", stats.AverageRating)
	assert.Equal(t, 2, stats.ActiveProjects)
}
