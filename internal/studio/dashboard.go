package studio

import (
	"context"
	"fmt"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/models"

	"go.uber.org/zap"
)

// DashboardStats - сводка панели автора.
type DashboardStats struct {
	TotalGames     int    `json:"totalGames"`
	TotalPlays     int    `json:"totalPlays"`
	AverageRating  string `json:"averageRating"` // одна цифра после запятой
	ActiveProjects int    `json:"activeProjects"`
}

// Dashboard - список проектов и сводка.
type Dashboard struct {
	Projects []models.Game `json:"projects"`
	Stats    DashboardStats `json:"stats"`
}

// ComputeStats считает сводку по сохраненным играм. Игры без статуса считаются активными.
func ComputeStats(games []models.Game) DashboardStats {
	stats := DashboardStats{TotalGames: len(games)}
	ratingSum := 0.0
	for i := range games {
		stats.TotalPlays += games[i].PlayCount()
		ratingSum += games[i].RatingOr(0)
		if games[i].Status == models.GameStatusActive || games[i].Status == "" {
			stats.ActiveProjects++
		}
	}
	divisor := len(games)
	if divisor == 0 {
		divisor = 1
	}
	stats.AverageRating = fmt.Sprintf("%.1f", ratingSum/float64(divisor))
	return stats
}

// Dashboard возвращает проекты устройства и сводку по ним.
func (s *Service) Dashboard(ctx context.Context, deviceID string) (*Dashboard, error) {
	games, err := s.games.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []models.Game{}
	}
	return &Dashboard{Projects: games, Stats: ComputeStats(games)}, nil
}

// Publish переводит игру в статус published и ставит время публикации.
func (s *Service) Publish(ctx context.Context, deviceID, gameID string) (*models.Game, error) {
	now := s.now().UTC()
	game, err := s.games.Update(ctx, deviceID, gameID, func(g *models.Game) {
		g.Status = models.GameStatusPublished
		g.PublishedAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Game published", zap.String("deviceID", deviceID), zap.String("gameID", gameID))
	s.publish(ctx, models.PlatformEvent{Type: models.EventGamePublished, DeviceID: deviceID, GameID: gameID, Title: game.Title})
	return game, nil
}

// Delete удаляет игру целиком.
func (s *Service) Delete(ctx context.Context, deviceID, gameID string) error {
	if err := s.games.Delete(ctx, deviceID, gameID); err != nil {
		return err
	}
	// сессия проигрывания удаленной игры больше не нужна
	if err := s.storage.RemoveItem(ctx, deviceID, constants.PlayKey(gameID)); err != nil {
		s.logger.Warn("Failed to remove play session of deleted game", zap.String("deviceID", deviceID), zap.String("gameID", gameID), zap.Error(err))
	}
	s.logger.Info("Game deleted", zap.String("deviceID", deviceID), zap.String("gameID", gameID))
	s.publish(ctx, models.PlatformEvent{Type: models.EventGameDeleted, DeviceID: deviceID, GameID: gameID})
	return nil
}
