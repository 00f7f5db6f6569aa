package playback

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"rpg-creator/shared/models"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Phase - состояние сессии проигрывания.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseDisplaying    Phase = "displaying"
	PhaseTransitioning Phase = "transitioning"
)

// Source - откуда взята игра.
type Source string

const (
	SourceSample   Source = "sample"
	SourceAuthored Source = "authored"
)

const genericOpeningText = "Your adventure begins in this mysterious world. What would you like to do first?"

var genericOpeningChoices = []models.Choice{
	{Text: "Explore the surrounding area", Next: 1},
	{Text: "Check your inventory", Next: 2},
	{Text: "Look for other characters", Next: 3},
}

// Session - состояние проигрывания одной игры на устройстве.
// Opening хранится, чтобы перезапуск всегда возвращал к исходному первому узлу.
type Session struct {
	GameID      string             `json:"gameId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Source      Source             `json:"source"`
	Phase       Phase              `json:"phase"`
	NodeIndex   int                `json:"nodeIndex"`
	TargetIndex *int               `json:"targetIndex,omitempty"`
	Node        models.StoryNode   `json:"node"`
	Opening     models.StoryNode   `json:"opening"`
	Stats       models.PlayerStats `json:"stats"`
	Log         []string           `json:"log"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Engine интерпретирует графы и авторский контент.
type Engine struct {
	library   *Library
	fallback  FallbackGenerator
	sanitizer *bluemonday.Policy
	delay     time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewEngine создает движок. delay - пауза "обдумывания" перед показом следующего узла.
func NewEngine(library *Library, fallback FallbackGenerator, delay time.Duration, logger *zap.Logger) *Engine {
	if fallback == nil {
		fallback = NewRandomFallback(nil)
	}
	return &Engine{
		library:   library,
		fallback:  fallback,
		sanitizer: bluemonday.StrictPolicy(),
		delay:     delay,
		now:       time.Now,
		logger:    logger.Named("PlaybackEngine"),
	}
}

// Delay возвращает паузу перехода.
func (e *Engine) Delay() time.Duration {
	return e.delay
}

// Start открывает игру и переводит сессию в Displaying(0).
func (e *Engine) Start(game models.Game) *Session {
	source := SourceAuthored
	if _, ok := e.library.Sample(game.ID); ok && len(game.Scenes) == 0 {
		source = SourceSample
	}
	opening := e.opening(game, source)
	s := &Session{
		GameID:      game.ID,
		Title:       game.Title,
		Description: game.Description,
		Source:      source,
		Phase:       PhaseIdle,
		Opening:     opening,
	}
	e.reset(s)
	sessionsStartedTotal.WithLabelValues(string(source)).Inc()
	e.logger.Debug("Session started", zap.String("gameID", game.ID), zap.String("source", string(source)))
	return s
}

// Restart сбрасывает характеристики и журнал и возвращает к первому узлу игры.
func (e *Engine) Restart(s *Session) {
	e.reset(s)
}

func (e *Engine) reset(s *Session) {
	s.Stats = models.DefaultPlayerStats()
	s.Log = []string{}
	s.NodeIndex = 0
	s.TargetIndex = nil
	s.Node = cloneNode(s.Opening)
	s.Phase = PhaseDisplaying
	s.UpdatedAt = e.now().UTC()
}

// Begin проверяет выбор, пишет его в журнал и переводит сессию в Transitioning.
func (e *Engine) Begin(s *Session, choiceIndex int) (models.Choice, error) {
	switch s.Phase {
	case PhaseTransitioning:
		return models.Choice{}, models.ErrTransitionInProgress
	case PhaseDisplaying:
	default:
		return models.Choice{}, models.ErrSessionNotStarted
	}
	if choiceIndex < 0 || choiceIndex >= len(s.Node.Choices) {
		return models.Choice{}, fmt.Errorf("choice %d of %d: %w", choiceIndex, len(s.Node.Choices), models.ErrInvalidChoice)
	}
	choice := s.Node.Choices[choiceIndex]
	target := choice.Next
	s.Log = append(s.Log, "> You chose: "+choice.Text)
	s.TargetIndex = &target
	s.Phase = PhaseTransitioning
	s.UpdatedAt = e.now().UTC()
	return choice, nil
}

// Complete завершает переход: узел графа, если он есть, иначе сгенерированный.
func (e *Engine) Complete(s *Session) {
	if s.Phase != PhaseTransitioning || s.TargetIndex == nil {
		return
	}
	target := *s.TargetIndex
	outcome := "fallback"
	node, ok := models.StoryNode{}, false
	if s.Source == SourceSample {
		node, ok = e.library.Node(s.GameID, target)
	}
	if ok {
		outcome = "graph"
		node = cloneNode(node)
	} else {
		node = e.fallback.Generate()
	}
	s.NodeIndex = target
	s.TargetIndex = nil
	s.Node = node
	s.Phase = PhaseDisplaying
	s.UpdatedAt = e.now().UTC()
	transitionsTotal.WithLabelValues(outcome).Inc()
}

// Choose выполняет выбор целиком, включая паузу. Отмена контекста прерывает только
// ожидание: переход все равно завершается.
func (e *Engine) Choose(ctx context.Context, s *Session, choiceIndex int) error {
	if _, err := e.Begin(s, choiceIndex); err != nil {
		return err
	}
	_ = sleepContext(ctx, e.delay)
	e.Complete(s)
	return nil
}

// Stale сообщает, что переход завис (например, процесс упал во время паузы).
func (e *Engine) Stale(s *Session) bool {
	return s.Phase == PhaseTransitioning && e.now().Sub(s.UpdatedAt) > 2*e.delay+time.Second
}

// opening строит первый узел. Авторская игра читает только первую сцену.
func (e *Engine) opening(game models.Game, source Source) models.StoryNode {
	if source == SourceSample {
		if node, ok := e.library.Node(game.ID, 0); ok {
			return cloneNode(node)
		}
	} else if len(game.Scenes) > 0 && len(game.Scenes[0].Elements) > 0 {
		contents := make([]string, 0, len(game.Scenes[0].Elements))
		for _, el := range game.Scenes[0].Elements {
			contents = append(contents, el.Content)
		}
		return models.StoryNode{
			Text:    e.plain(fmt.Sprintf("Welcome to %s! %s\n\n%s", game.Title, game.Description, strings.Join(contents, " "))),
			Choices: cloneChoices(genericOpeningChoices),
		}
	}
	return models.StoryNode{
		Text:    e.plain(fmt.Sprintf("Welcome to %s! %s\n\n%s", game.Title, game.Description, genericOpeningText)),
		Choices: cloneChoices(genericOpeningChoices),
	}
}

// plain убирает разметку из авторского текста.
func (e *Engine) plain(text string) string {
	return html.UnescapeString(e.sanitizer.Sanitize(text))
}

func cloneNode(node models.StoryNode) models.StoryNode {
	return models.StoryNode{Text: node.Text, Choices: cloneChoices(node.Choices)}
}

func cloneChoices(choices []models.Choice) []models.Choice {
	out := make([]models.Choice, len(choices))
	copy(out, choices)
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
