package playback

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"rpg-creator/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	lib, err := LoadLibrary()
	require.NoError(t, err)
	return NewEngine(lib, NewRandomFallback(rand.NewPCG(1, 2)), 0, zap.NewNop())
}

func TestLibraryLoadsEmbeddedSamples(t *testing.T) {
	lib := MustLoadLibrary()
	samples := lib.Samples()
	require.Len(t, samples, 4)
	assert.Equal(t, "The Crystal of Eternity", samples[0].Title)
	assert.Equal(t, "Space Station Alpha", samples[3].Title)

	_, ok := lib.Node("1", 2)
	assert.True(t, ok)
	_, ok = lib.Node("1", 3)
	assert.False(t, ok)
	_, ok = lib.Node("3", 0)
	assert.False(t, ok)
}

func TestParseLibraryRejectsDuplicates(t *testing.T) {
	_, err := ParseLibrary([]byte("games:\n  - id: \"1\"\n  - id: \"1\"\n"))
	assert.Error(t, err)
	_, err = ParseLibrary([]byte("games:\n  - title: nameless\n"))
	assert.Error(t, err)
}

func TestCrystalRightPathScenario(t *testing.T) {
	engine := newTestEngine(t)
	sample, _ := engine.library.Sample("1")
	s := engine.Start(sample.Game())

	assert.Equal(t, SourceSample, s.Source)
	assert.Equal(t, PhaseDisplaying, s.Phase)
	assert.True(t, strings.HasPrefix(s.Node.Text, "You stand at the entrance of the Enchanted Forest"))
	require.Len(t, s.Node.Choices, 3)

	require.NoError(t, engine.Choose(context.Background(), s, 1))
	assert.Equal(t, 2, s.NodeIndex)
	assert.Contains(t, s.Node.Text, "waterfall")
	assert.Contains(t, s.Node.Text, "hidden cave")
	assert.Equal(t, []string{"> You chose: Take the right path following the crystal stream"}, s.Log)

	declared := []int{s.Node.Choices[0].Next, s.Node.Choices[1].Next, s.Node.Choices[2].Next}
	require.NoError(t, engine.Choose(context.Background(), s, 0))
	assert.Contains(t, declared, s.NodeIndex)
	assert.Equal(t, 7, s.NodeIndex)
}

func TestFallbackAlwaysHasThreeChoices(t *testing.T) {
	fb := NewRandomFallback(rand.NewPCG(42, 7))
	for i := 0; i < 200; i++ {
		node := fb.Generate()
		assert.NotEmpty(t, node.Text)
		require.Len(t, node.Choices, 3)
		for _, c := range node.Choices {
			assert.GreaterOrEqual(t, c.Next, 0)
			assert.Less(t, c.Next, 5)
		}
	}
}

func TestRestartReturnsToOpening(t *testing.T) {
	engine := newTestEngine(t)
	sample, _ := engine.library.Sample("2")
	s := engine.Start(sample.Game())
	opening := s.Node

	for i := 0; i < 10; i++ {
		require.NoError(t, engine.Choose(context.Background(), s, i%3))
	}
	s.Stats.Health = 3
	engine.Restart(s)

	assert.Equal(t, opening, s.Node)
	assert.Equal(t, 0, s.NodeIndex)
	assert.Empty(t, s.Log)
	assert.Equal(t, models.DefaultPlayerStats(), s.Stats)
	assert.Equal(t, PhaseDisplaying, s.Phase)
}

func TestAuthoredGameOpenings(t *testing.T) {
	engine := newTestEngine(t)

	empty := models.Game{ID: "g-1", Title: "Empty", Description: "Nothing here", Scenes: []models.Scene{{ID: "s1", Name: "Scene 1"}}}
	s := engine.Start(empty)
	assert.Equal(t, SourceAuthored, s.Source)
	assert.Equal(t, "Welcome to Empty! Nothing here\n\nYour adventure begins in this mysterious world. What would you like to do first?", s.Node.Text)
	assert.Equal(t, genericOpeningChoices, s.Node.Choices)

	authored := models.Game{ID: "g-2", Title: "Tale", Description: "<b>Bold</b> & brave", Scenes: []models.Scene{
		{ID: "s1", Elements: []models.PlacedElement{{Content: "Hello"}, {Content: "<script>x()</script>world"}}},
		{ID: "s2", Elements: []models.PlacedElement{{Content: "never shown"}}},
	}}
	s = engine.Start(authored)
	assert.Equal(t, "Welcome to Tale! Bold & brave\n\nHello world", s.Node.Text)
	require.Len(t, s.Node.Choices, 3)

	// у авторской игры нет графа: любой выбор уходит в генерацию
	require.NoError(t, engine.Choose(context.Background(), s, 0))
	assert.Contains(t, fallbackTexts, s.Node.Text)
	assert.Len(t, s.Node.Choices, 3)
}

func TestSampleWithoutGraphUsesGenericOpening(t *testing.T) {
	engine := newTestEngine(t)
	sample, _ := engine.library.Sample("3")
	s := engine.Start(sample.Game())
	assert.True(t, strings.HasPrefix(s.Node.Text, "Welcome to Dragon's Keep! Rescue the princess"))
	assert.Len(t, s.Node.Choices, 3)
}

func TestBeginGuards(t *testing.T) {
	engine := newTestEngine(t)
	sample, _ := engine.library.Sample("1")
	s := engine.Start(sample.Game())

	_, err := engine.Begin(s, 3)
	assert.ErrorIs(t, err, models.ErrInvalidChoice)
	_, err = engine.Begin(s, -1)
	assert.ErrorIs(t, err, models.ErrInvalidChoice)

	_, err = engine.Begin(s, 0)
	require.NoError(t, err)
	assert.Equal(t, PhaseTransitioning, s.Phase)
	_, err = engine.Begin(s, 0)
	assert.ErrorIs(t, err, models.ErrTransitionInProgress)

	idle := &Session{Phase: PhaseIdle}
	_, err = engine.Begin(idle, 0)
	assert.ErrorIs(t, err, models.ErrSessionNotStarted)
}
