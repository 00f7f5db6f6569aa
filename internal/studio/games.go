package studio

import (
	"context"
	"fmt"
	"sync"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"
)

// GameRepository - сохраненные игры устройства (ключ rpgGames).
type GameRepository interface {
	List(ctx context.Context, deviceID string) ([]models.Game, error)
	Get(ctx context.Context, deviceID, gameID string) (*models.Game, error)
	Append(ctx context.Context, deviceID string, game models.Game) error
	// Update применяет fn к игре с gameID и сохраняет результат.
	Update(ctx context.Context, deviceID, gameID string, fn func(*models.Game)) (*models.Game, error)
	Delete(ctx context.Context, deviceID, gameID string) error
}

var _ GameRepository = (*deviceGameRepository)(nil)

// deviceGameRepository хранит игры одним JSON-массивом, как браузер хранил rpgGames.
// Чтение-изменение-запись массива защищено мьютексом в пределах процесса.
type deviceGameRepository struct {
	storage interfaces.DeviceStorage
	mu      sync.Mutex
}

// NewGameRepository создает репозиторий игр поверх хранилища устройств.
func NewGameRepository(storage interfaces.DeviceStorage) GameRepository {
	return &deviceGameRepository{storage: storage}
}

func (r *deviceGameRepository) load(ctx context.Context, deviceID string) ([]models.Game, error) {
	var games []models.Game
	if _, err := interfaces.LoadJSON(ctx, r.storage, deviceID, constants.StorageKeyGames, &games); err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	return games, nil
}

func (r *deviceGameRepository) save(ctx context.Context, deviceID string, games []models.Game) error {
	if games == nil {
		games = []models.Game{}
	}
	if err := interfaces.SaveJSON(ctx, r.storage, deviceID, constants.StorageKeyGames, games); err != nil {
		return fmt.Errorf("failed to save games: %w", err)
	}
	return nil
}

func (r *deviceGameRepository) List(ctx context.Context, deviceID string) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, deviceID)
}

func (r *deviceGameRepository) Get(ctx context.Context, deviceID, gameID string) (*models.Game, error) {
	games, err := r.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].ID == gameID {
			return &games[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *deviceGameRepository) Append(ctx context.Context, deviceID string, game models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	games, err := r.load(ctx, deviceID)
	if err != nil {
		return err
	}
	return r.save(ctx, deviceID, append(games, game))
}

func (r *deviceGameRepository) Update(ctx context.Context, deviceID, gameID string, fn func(*models.Game)) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	games, err := r.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].ID != gameID {
			continue
		}
		fn(&games[i])
		if err := r.save(ctx, deviceID, games); err != nil {
			return nil, err
		}
		updated := games[i].Clone()
		return &updated, nil
	}
	return nil, models.ErrNotFound
}

func (r *deviceGameRepository) Delete(ctx context.Context, deviceID, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	games, err := r.load(ctx, deviceID)
	if err != nil {
		return err
	}
	kept := games[:0]
	for _, g := range games {
		if g.ID != gameID {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(games) {
		return models.ErrNotFound
	}
	return r.save(ctx, deviceID, kept)
}
