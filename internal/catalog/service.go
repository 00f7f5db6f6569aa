package catalog

import (
	"context"
	"time"

	"rpg-creator/internal/playback"
	"rpg-creator/shared/models"

	"go.uber.org/zap"
)

// GameLister - сохраненные игры устройства.
type GameLister interface {
	List(ctx context.Context, deviceID string) ([]models.Game, error)
}

// Translator переводит ключ на язык устройства.
type Translator interface {
	T(ctx context.Context, deviceID, key string) string
}

// Service - витрины только для чтения поверх сохраненных игр.
type Service struct {
	games      GameLister
	library    *playback.Library
	translator Translator
	community  communityData
	now        func() time.Time
	logger     *zap.Logger
}

// NewService читает встроенные данные сообщества.
func NewService(games GameLister, library *playback.Library, translator Translator, logger *zap.Logger) (*Service, error) {
	data, err := parseCommunity(communityYAML)
	if err != nil {
		return nil, err
	}
	return &Service{
		games:      games,
		library:    library,
		translator: translator,
		community:  data,
		now:        time.Now,
		logger:     logger.Named("CatalogService"),
	}, nil
}

// PlayEntry - карточка в списке игр для проигрывания.
type PlayEntry struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnail   string     `json:"thumbnail"`
	Genre       string     `json:"genre,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
	Playtime    string     `json:"playtime,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Created     bool       `json:"created"`
}

// PlayList - созданные на устройстве игры, затем демо-игры.
type PlayList struct {
	Created  []PlayEntry `json:"created"`
	Featured []PlayEntry `json:"featured"`
}

// All возвращает обе группы одним списком в порядке поиска игры по ID.
func (p PlayList) All() []PlayEntry {
	out := make([]PlayEntry, 0, len(p.Created)+len(p.Featured))
	out = append(out, p.Created...)
	return append(out, p.Featured...)
}

// PlayList строит список игр для проигрывания.
func (s *Service) PlayList(ctx context.Context, deviceID string) (*PlayList, error) {
	saved, err := s.games.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	list := &PlayList{
		Created:  make([]PlayEntry, 0, len(saved)),
		Featured: []PlayEntry{},
	}
	for i := range saved {
		g := saved[i]
		entry := PlayEntry{
			ID:          g.ID,
			Title:       g.Title,
			Description: g.Description,
			Thumbnail:   userThumbnail,
			Created:     true,
		}
		if !g.CreatedAt.IsZero() {
			createdAt := g.CreatedAt
			entry.CreatedAt = &createdAt
		}
		list.Created = append(list.Created, entry)
	}
	for _, sample := range s.library.Samples() {
		list.Featured = append(list.Featured, PlayEntry{
			ID:          sample.ID,
			Title:       sample.Title,
			Description: sample.Description,
			Thumbnail:   sample.Thumbnail,
			Genre:       sample.Genre,
			Difficulty:  sample.Difficulty,
			Playtime:    sample.Playtime,
		})
	}
	return list, nil
}

// Feature - раздел платформы на главной странице.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Link        string `json:"link"`
}

// Highlight - рекламная цифра на главной.
type Highlight struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// HomeCounters - счетчики устройства.
type HomeCounters struct {
	GamesCreated int `json:"gamesCreated"`
	Published    int `json:"published"`
}

// Home - главная страница.
type Home struct {
	Features   []Feature    `json:"features"`
	Highlights []Highlight  `json:"highlights"`
	Counters   HomeCounters `json:"counters"`
}

var homeFeatures = []struct {
	key, icon, link string
}{
	{"gameStudio", "🎮", "/studio"},
	{"aiStoryGenerator", "🤖", "/studio"},
	{"playGames", "⚔️", "/play"},
	{"creatorDashboard", "📊", "/dashboard"},
	{"communityHub", "🌟", "/community"},
}

var homeHighlights = []struct {
	value, key string
}{
	{"10K+", "gamesCreated"},
	{"50K+", "activePlayers"},
	{"5K+", "creators"},
}

// Home строит главную страницу на языке устройства.
func (s *Service) Home(ctx context.Context, deviceID string) (*Home, error) {
	saved, err := s.games.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	home := &Home{
		Features:   make([]Feature, 0, len(homeFeatures)),
		Highlights: make([]Highlight, 0, len(homeHighlights)),
		Counters:   HomeCounters{GamesCreated: len(saved)},
	}
	for _, f := range homeFeatures {
		home.Features = append(home.Features, Feature{
			Title:       s.translator.T(ctx, deviceID, f.key),
			Description: s.translator.T(ctx, deviceID, f.key+"Desc"),
			Icon:        f.icon,
			Link:        f.link,
		})
	}
	for _, h := range homeHighlights {
		home.Highlights = append(home.Highlights, Highlight{Value: h.value, Label: s.translator.T(ctx, deviceID, h.key)})
	}
	for i := range saved {
		if saved[i].Status == models.GameStatusPublished {
			home.Counters.Published++
		}
	}
	return home, nil
}
