package studio

import (
	"fmt"
	"time"

	"rpg-creator/shared/models"

	"github.com/google/uuid"
)

// Project - игра, открытая в редакторе, и выбранная в нем сцена.
// Элементы размещаются прямо в сцены игры, поэтому переключение сцен ничего не теряет.
type Project struct {
	Game           models.Game `json:"game"`
	CurrentSceneID string      `json:"currentSceneId,omitempty"`
}

// NewProject создает пустой проект.
func NewProject(title, description string) *Project {
	return &Project{Game: models.Game{
		Title:       title,
		Description: description,
		Scenes:      []models.Scene{},
	}}
}

// CurrentScene возвращает выбранную сцену или nil.
func (p *Project) CurrentScene() *models.Scene {
	if p.CurrentSceneID == "" {
		return nil
	}
	if i := p.Game.SceneIndex(p.CurrentSceneID); i >= 0 {
		return &p.Game.Scenes[i]
	}
	return nil
}

// SetDetails меняет название и описание игры.
func (p *Project) SetDetails(title, description string) {
	p.Game.Title = title
	p.Game.Description = description
}

// CreateScene добавляет сцену "<label> N" (N - новая длина списка) и делает ее текущей.
func (p *Project) CreateScene(label string) models.Scene {
	scene := models.Scene{
		ID:       uuid.NewString(),
		Name:     fmt.Sprintf("%s %d", label, len(p.Game.Scenes)+1),
		Elements: []models.PlacedElement{},
	}
	p.Game.Scenes = append(p.Game.Scenes, scene)
	p.CurrentSceneID = scene.ID
	return scene
}

// SelectScene делает сцену текущей.
func (p *Project) SelectScene(sceneID string) error {
	if p.Game.SceneIndex(sceneID) < 0 {
		return fmt.Errorf("scene %s: %w", sceneID, models.ErrNotFound)
	}
	p.CurrentSceneID = sceneID
	return nil
}

// PlaceElement добавляет элемент в текущую сцену. Тип не проверяется,
// координаты и пересечения не ограничиваются. typeName - отображаемое имя типа.
func (p *Project) PlaceElement(elementType models.ElementType, typeName string, x, y float64) (models.PlacedElement, error) {
	scene := p.CurrentScene()
	if scene == nil {
		return models.PlacedElement{}, models.ErrNoActiveScene
	}
	if typeName == "" {
		typeName = string(elementType)
	}
	element := models.PlacedElement{
		ID:      uuid.NewString(),
		Type:    elementType,
		Name:    typeName,
		Content: "New " + typeName,
		X:       x,
		Y:       y,
	}
	scene.Elements = append(scene.Elements, element)
	return element, nil
}

// UpdateElement меняет текст элемента в любой сцене проекта.
func (p *Project) UpdateElement(elementID, content string) (models.PlacedElement, error) {
	for si := range p.Game.Scenes {
		elements := p.Game.Scenes[si].Elements
		for ei := range elements {
			if elements[ei].ID == elementID {
				elements[ei].Content = content
				return elements[ei], nil
			}
		}
	}
	return models.PlacedElement{}, fmt.Errorf("element %s: %w", elementID, models.ErrNotFound)
}

// Snapshot возвращает копию игры для сохранения с новым ID и временем создания.
// Повторный вызов дает независимую игру.
func (p *Project) Snapshot(createdAt time.Time) models.Game {
	game := p.Game.Clone()
	game.ID = uuid.NewString()
	game.CreatedAt = createdAt
	if game.Scenes == nil {
		game.Scenes = []models.Scene{}
	}
	return game
}
