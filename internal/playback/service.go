package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	"go.uber.org/zap"
)

// GameSource - сохраненные игры устройства.
type GameSource interface {
	Get(ctx context.Context, deviceID, gameID string) (*models.Game, error)
	Update(ctx context.Context, deviceID, gameID string, fn func(*models.Game)) (*models.Game, error)
}

// SessionRepository хранит сессии под ключом rpg-play:<gameID>.
type SessionRepository struct {
	storage interfaces.DeviceStorage
}

func NewSessionRepository(storage interfaces.DeviceStorage) *SessionRepository {
	return &SessionRepository{storage: storage}
}

// Get возвращает сессию или models.ErrSessionNotStarted.
func (r *SessionRepository) Get(ctx context.Context, deviceID, gameID string) (*Session, error) {
	var s Session
	found, err := interfaces.LoadJSON(ctx, r.storage, deviceID, constants.PlayKey(gameID), &s)
	if err != nil {
		return nil, fmt.Errorf("failed to load play session: %w", err)
	}
	if !found {
		return nil, models.ErrSessionNotStarted
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, deviceID string, s *Session) error {
	if err := interfaces.SaveJSON(ctx, r.storage, deviceID, constants.PlayKey(s.GameID), s); err != nil {
		return fmt.Errorf("failed to save play session: %w", err)
	}
	return nil
}

// Remove удаляет сессию игры. Отсутствие сессии ошибкой не считается.
func (r *SessionRepository) Remove(ctx context.Context, deviceID, gameID string) error {
	if err := r.storage.RemoveItem(ctx, deviceID, constants.PlayKey(gameID)); err != nil {
		return fmt.Errorf("failed to remove play session: %w", err)
	}
	return nil
}

// Service связывает движок, сохраненные игры и сессии устройства.
type Service struct {
	mu       sync.Mutex
	engine   *Engine
	library  *Library
	games    GameSource
	sessions *SessionRepository
	logger   *zap.Logger
}

func NewService(engine *Engine, library *Library, games GameSource, sessions *SessionRepository, logger *zap.Logger) *Service {
	return &Service{
		engine:   engine,
		library:  library,
		games:    games,
		sessions: sessions,
		logger:   logger.Named("PlaybackService"),
	}
}

// ResolveGame ищет игру сначала среди сохраненных, потом среди демо-игр.
func (s *Service) ResolveGame(ctx context.Context, deviceID, gameID string) (*models.Game, bool, error) {
	game, err := s.games.Get(ctx, deviceID, gameID)
	if err == nil {
		return game, true, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}
	if sample, ok := s.library.Sample(gameID); ok {
		g := sample.Game()
		return &g, false, nil
	}
	return nil, false, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
}

// Start продолжает сохраненную сессию или начинает новую.
// Новая сессия сохраненной игры увеличивает ее счетчик запусков.
func (s *Service) Start(ctx context.Context, deviceID, gameID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.liveSession(ctx, deviceID, gameID)
	switch {
	case err == nil:
		if s.engine.Stale(existing) {
			s.engine.Complete(existing)
			if err := s.sessions.Save(ctx, deviceID, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	case !errors.Is(err, models.ErrSessionNotStarted):
		return nil, err
	}

	game, saved, err := s.ResolveGame(ctx, deviceID, gameID)
	if err != nil {
		return nil, err
	}
	if saved {
		if _, err := s.games.Update(ctx, deviceID, gameID, func(g *models.Game) {
			plays := g.PlayCount() + 1
			g.Plays = &plays
		}); err != nil {
			return nil, err
		}
	}

	session := s.engine.Start(*game)
	if err := s.sessions.Save(ctx, deviceID, session); err != nil {
		return nil, err
	}
	s.logger.Info("Play session started", zap.String("deviceID", deviceID), zap.String("gameID", gameID), zap.String("source", string(session.Source)))
	return session, nil
}

// Session возвращает текущее состояние сессии.
func (s *Service) Session(ctx context.Context, deviceID, gameID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveSession(ctx, deviceID, gameID)
}

// liveSession загружает сессию и проверяет, что игра еще существует.
// Сессия удаленной игры стирается, вызывающий получает models.ErrNotFound.
// Вызывается под s.mu.
func (s *Service) liveSession(ctx context.Context, deviceID, gameID string) (*Session, error) {
	session, err := s.sessions.Get(ctx, deviceID, gameID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.ResolveGame(ctx, deviceID, gameID); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if rmErr := s.sessions.Remove(ctx, deviceID, gameID); rmErr != nil {
			s.logger.Warn("Failed to drop session of deleted game", zap.String("deviceID", deviceID), zap.String("gameID", gameID), zap.Error(rmErr))
		}
		return nil, err
	}
	return session, nil
}

// Choose делает выбор. Пока идет пауза, сессия сохранена в Transitioning,
// и повторный выбор получает models.ErrTransitionInProgress.
func (s *Service) Choose(ctx context.Context, deviceID, gameID string, choiceIndex int) (*Session, error) {
	s.mu.Lock()
	session, err := s.liveSession(ctx, deviceID, gameID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.engine.Stale(session) {
		s.engine.Complete(session)
	}
	choice, err := s.engine.Begin(session, choiceIndex)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.sessions.Save(ctx, deviceID, session); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.logger.Debug("Choice made", zap.String("deviceID", deviceID), zap.String("gameID", gameID), zap.String("choice", choice.Text))
	_ = sleepContext(ctx, s.engine.Delay())

	// переход завершается, даже если клиент ушел
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err = s.sessions.Get(ctx, deviceID, gameID)
	if err != nil {
		return nil, err
	}
	s.engine.Complete(session)
	if err := s.sessions.Save(ctx, deviceID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Restart возвращает сессию к первому узлу.
func (s *Service) Restart(ctx context.Context, deviceID, gameID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.liveSession(ctx, deviceID, gameID)
	if err != nil {
		return nil, err
	}
	s.engine.Restart(session)
	if err := s.sessions.Save(ctx, deviceID, session); err != nil {
		return nil, err
	}
	return session, nil
}
