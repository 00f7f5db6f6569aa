package catalog

import (
	"context"
	"testing"
	"time"

	"rpg-creator/internal/playback"
	"rpg-creator/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticGames []models.Game

func (g staticGames) List(context.Context, string) ([]models.Game, error) {
	return append([]models.Game(nil), g...), nil
}

type keyTranslator struct{}

func (keyTranslator) T(_ context.Context, _ string, key string) string { return "t:" + key }

func newTestService(t *testing.T, games staticGames) *Service {
	t.Helper()
	svc, err := NewService(games, playback.MustLoadLibrary(), keyTranslator{}, zap.NewNop())
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func titles(games []CommunityGame) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.Title)
	}
	return out
}

func TestCommunityTrendingIncludesPublishedUserGames(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, staticGames{
		{ID: "a", Title: "My Epic", Status: models.GameStatusPublished, Plays: models.IntPtr(10000), CreatedAt: created},
		{ID: "b", Title: "Draft Only", CreatedAt: created},
	})

	view, err := svc.Community(context.Background(), "dev", "", "")
	require.NoError(t, err)
	assert.Equal(t, TabTrending, view.Tab)
	assert.Equal(t, []string{"The Lost Kingdom", "Pirate's Treasure", "My Epic", "Medieval Quest", "Neon Streets", "Space Station Omega"}, titles(view.Games))

	mine := view.Games[2]
	assert.Equal(t, "You", mine.Creator)
	assert.Equal(t, 4.0, mine.Rating)
	assert.Equal(t, []string{"User Created"}, mine.Tags)
	assert.Equal(t, "🎮", mine.Thumbnail)
}

func TestCommunityTopRatedAndNew(t *testing.T) {
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, staticGames{
		{ID: "a", Title: "Old Gem", Status: models.GameStatusPublished, Rating: models.Float64Ptr(5), CreatedAt: old},
	})

	view, err := svc.Community(context.Background(), "dev", TabTopRated, "")
	require.NoError(t, err)
	assert.Equal(t, "Old Gem", view.Games[0].Title)
	assert.Equal(t, "Medieval Quest", view.Games[len(view.Games)-1].Title)

	// без даты создания карточка считается новой, поэтому старая игра уходит в конец,
	// а демо-игры сохраняют исходный порядок
	view, err = svc.Community(context.Background(), "dev", TabNew, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Lost Kingdom", "Neon Streets", "Pirate's Treasure", "Space Station Omega", "Medieval Quest", "Old Gem"}, titles(view.Games))
}

func TestCommunityFilter(t *testing.T) {
	svc := newTestService(t, nil)
	tests := []struct {
		query string
		want  []string
	}{
		{"NEON", []string{"Neon Streets"}},
		{"sciFiwriter", []string{"Space Station Omega"}},
		{"advent", []string{"The Lost Kingdom", "Pirate's Treasure"}},
		{"nothing matches", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			view, err := svc.Community(context.Background(), "dev", TabTrending, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(view.Games))
		})
	}
}

func TestCommunityCreatorsTab(t *testing.T) {
	svc := newTestService(t, nil)
	view, err := svc.Community(context.Background(), "dev", TabCreators, "ignored")
	require.NoError(t, err)
	assert.Empty(t, view.Games)
	require.Len(t, view.Creators, 3)
	assert.Equal(t, "FantasyMaster", view.Creators[0].Name)
	assert.Equal(t, 2340, view.Creators[0].Followers)
}

func TestPlayListOrder(t *testing.T) {
	svc := newTestService(t, staticGames{{ID: "mine", Title: "Mine", CreatedAt: time.Now()}})
	list, err := svc.PlayList(context.Background(), "dev")
	require.NoError(t, err)

	require.Len(t, list.Created, 1)
	assert.True(t, list.Created[0].Created)
	require.Len(t, list.Featured, 4)
	assert.Equal(t, "Fantasy", list.Featured[0].Genre)

	all := list.All()
	assert.Equal(t, "mine", all[0].ID)
	assert.Equal(t, "4", all[4].ID)
}

func TestHome(t *testing.T) {
	svc := newTestService(t, staticGames{
		{ID: "a", Status: models.GameStatusPublished},
		{ID: "b"},
	})
	home, err := svc.Home(context.Background(), "dev")
	require.NoError(t, err)

	require.Len(t, home.Features, 5)
	assert.Equal(t, Feature{Title: "t:gameStudio", Description: "t:gameStudioDesc", Icon: "🎮", Link: "/studio"}, home.Features[0])
	assert.Equal(t, "/community", home.Features[4].Link)
	assert.Equal(t, Highlight{Value: "50K+", Label: "t:activePlayers"}, home.Highlights[1])
	assert.Equal(t, HomeCounters{GamesCreated: 2, Published: 1}, home.Counters)
}
