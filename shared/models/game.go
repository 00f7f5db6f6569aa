package models

import "time"

// GameStatus - статус игры в жизненном цикле проекта.
type GameStatus string

const (
	GameStatusDraft     GameStatus = "draft"
	GameStatusActive    GameStatus = "active"
	GameStatusPublished GameStatus = "published"
)

// ElementType - тип блока контента, который автор перетаскивает на сцену.
// Неизвестные типы сохраняются как есть.
type ElementType string

const (
	ElementDialogue  ElementType = "dialogue"
	ElementChoice    ElementType = "choice"
	ElementCombat    ElementType = "combat"
	ElementCharacter ElementType = "character"
	ElementItem      ElementType = "item"
	ElementLocation  ElementType = "location"
)

// KnownElementTypes - палитра редактора в порядке отображения.
var KnownElementTypes = []ElementType{
	ElementDialogue,
	ElementChoice,
	ElementCombat,
	ElementCharacter,
	ElementItem,
	ElementLocation,
}

// IsKnown сообщает, есть ли тип в палитре редактора.
func (t ElementType) IsKnown() bool {
	for _, known := range KnownElementTypes {
		if known == t {
			return true
		}
	}
	return false
}

// PlacedElement - блок контента, размещенный на сцене.
// Координаты локальны для холста редактора и ничем не ограничены.
type PlacedElement struct {
	ID      string      `json:"id"`
	Type    ElementType `json:"type"`
	Name    string      `json:"name"`
	Content string      `json:"content"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
}

// Scene - упорядоченный список элементов. ID задан всегда, элементов может не быть.
type Scene struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Elements []PlacedElement `json:"elements"`
}

// Game - авторская игра в том виде, в котором она лежит в rpgGames.
type Game struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Scenes      []Scene    `json:"scenes"`
	Status      GameStatus `json:"status,omitempty"`
	OwnerID     string     `json:"ownerId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	Plays       *int       `json:"plays,omitempty"`
}

// PlayCount возвращает количество запусков (0, если счетчик не заведен).
func (g *Game) PlayCount() int {
	if g.Plays == nil {
		return 0
	}
	return *g.Plays
}

// RatingOr возвращает рейтинг игры или значение по умолчанию.
func (g *Game) RatingOr(def float64) float64 {
	if g.Rating == nil {
		return def
	}
	return *g.Rating
}

// SceneIndex возвращает индекс сцены по ID или -1.
func (g *Game) SceneIndex(sceneID string) int {
	for i := range g.Scenes {
		if g.Scenes[i].ID == sceneID {
			return i
		}
	}
	return -1
}

// Clone возвращает глубокую копию игры: сцены и элементы не разделяются с оригиналом.
func (g Game) Clone() Game {
	out := g
	if g.Scenes != nil {
		out.Scenes = make([]Scene, len(g.Scenes))
		for i, scene := range g.Scenes {
			out.Scenes[i] = scene.Clone()
		}
	}
	return out
}

// Clone возвращает копию сцены с собственным срезом элементов.
func (s Scene) Clone() Scene {
	out := s
	if s.Elements != nil {
		out.Elements = append([]PlacedElement(nil), s.Elements...)
	}
	return out
}
