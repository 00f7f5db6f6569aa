// Package studio - редактор сцен и панель проектов автора.
package studio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	"go.uber.org/zap"
)

// Translator переводит ключ на язык устройства.
type Translator interface {
	T(ctx context.Context, deviceID, key string) string
}

// OwnerResolver возвращает ID текущей личности устройства (пусто, если никто не вошел).
type OwnerResolver func(ctx context.Context, deviceID string) string

// Service - операции редактора над проектом устройства (ключ rpg-studio) и над сохраненными играми.
type Service struct {
	mu sync.Mutex // сериализует чтение-изменение-запись проекта

	storage    interfaces.DeviceStorage
	games      GameRepository
	translator Translator
	publisher  interfaces.EventPublisher
	owner      OwnerResolver
	now        func() time.Time
	logger     *zap.Logger
}

// NewService создает сервис редактора. owner может быть nil.
func NewService(
	storage interfaces.DeviceStorage,
	games GameRepository,
	translator Translator,
	publisher interfaces.EventPublisher,
	owner OwnerResolver,
	logger *zap.Logger,
) *Service {
	if owner == nil {
		owner = func(context.Context, string) string { return "" }
	}
	return &Service{
		storage:    storage,
		games:      games,
		translator: translator,
		publisher:  publisher,
		owner:      owner,
		now:        time.Now,
		logger:     logger.Named("StudioService"),
	}
}

// Project возвращает проект устройства; если его нет - пустой (без сохранения).
func (s *Service) Project(ctx context.Context, deviceID string) (*Project, error) {
	var project Project
	found, err := interfaces.LoadJSON(ctx, s.storage, deviceID, constants.StorageKeyStudio, &project)
	if err != nil {
		return nil, fmt.Errorf("failed to load studio project: %w", err)
	}
	if !found {
		return NewProject("", ""), nil
	}
	if project.Game.Scenes == nil {
		project.Game.Scenes = []models.Scene{}
	}
	return &project, nil
}

// NewProject заменяет проект устройства новым пустым.
func (s *Service) NewProject(ctx context.Context, deviceID, title, description string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project := NewProject(title, description)
	if err := s.saveProject(ctx, deviceID, project); err != nil {
		return nil, err
	}
	return project, nil
}

// SetDetails меняет название и описание.
func (s *Service) SetDetails(ctx context.Context, deviceID, title, description string) (*Project, error) {
	return s.mutate(ctx, deviceID, func(p *Project) error {
		p.SetDetails(title, description)
		return nil
	})
}

// CreateScene добавляет сцену с именем на языке устройства.
func (s *Service) CreateScene(ctx context.Context, deviceID string) (*Project, models.Scene, error) {
	label := s.translator.T(ctx, deviceID, "scenes")
	var scene models.Scene
	project, err := s.mutate(ctx, deviceID, func(p *Project) error {
		scene = p.CreateScene(label)
		return nil
	})
	return project, scene, err
}

// SelectScene переключает текущую сцену.
func (s *Service) SelectScene(ctx context.Context, deviceID, sceneID string) (*Project, error) {
	return s.mutate(ctx, deviceID, func(p *Project) error {
		return p.SelectScene(sceneID)
	})
}

// PlaceElement размещает элемент в текущей сцене. Имя известного типа берется из перевода,
// неизвестный тип сохраняется как есть и служит своим же именем.
func (s *Service) PlaceElement(ctx context.Context, deviceID string, elementType models.ElementType, x, y float64) (*Project, models.PlacedElement, error) {
	name := string(elementType)
	if elementType.IsKnown() {
		name = s.translator.T(ctx, deviceID, string(elementType))
	}
	var element models.PlacedElement
	project, err := s.mutate(ctx, deviceID, func(p *Project) error {
		var err error
		element, err = p.PlaceElement(elementType, name, x, y)
		return err
	})
	return project, element, err
}

// UpdateElement меняет текст размещенного элемента.
func (s *Service) UpdateElement(ctx context.Context, deviceID, elementID, content string) (*Project, models.PlacedElement, error) {
	var element models.PlacedElement
	project, err := s.mutate(ctx, deviceID, func(p *Project) error {
		var err error
		element, err = p.UpdateElement(elementID, content)
		return err
	})
	return project, element, err
}

// SaveGame добавляет снимок проекта в rpgGames. Дубликаты не отсекаются:
// каждый вызов создает отдельную игру со своим ID и временем.
func (s *Service) SaveGame(ctx context.Context, deviceID string) (*models.Game, error) {
	project, err := s.Project(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	game := project.Snapshot(s.now().UTC())
	game.OwnerID = s.owner(ctx, deviceID)
	if err := s.games.Append(ctx, deviceID, game); err != nil {
		return nil, err
	}
	s.logger.Info("Game saved", zap.String("deviceID", deviceID), zap.String("gameID", game.ID), zap.Int("scenes", len(game.Scenes)))
	s.publish(ctx, models.PlatformEvent{Type: models.EventGameSaved, DeviceID: deviceID, GameID: game.ID, Title: game.Title})
	return &game, nil
}

func (s *Service) mutate(ctx context.Context, deviceID string, fn func(*Project) error) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, err := s.Project(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := fn(project); err != nil {
		return nil, err
	}
	if err := s.saveProject(ctx, deviceID, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) saveProject(ctx context.Context, deviceID string, project *Project) error {
	if err := interfaces.SaveJSON(ctx, s.storage, deviceID, constants.StorageKeyStudio, project); err != nil {
		return fmt.Errorf("failed to save studio project: %w", err)
	}
	return nil
}

// publish отправляет событие; ошибка брокера не ломает операцию пользователя.
func (s *Service) publish(ctx context.Context, event models.PlatformEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish platform event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
