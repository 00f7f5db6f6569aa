// Package catalog строит витрины: сообщество, список игр для проигрывания, главную страницу.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"rpg-creator/shared/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/community.yaml
var communityYAML []byte

// Tab - вкладка витрины сообщества.
type Tab string

const (
	TabTrending Tab = "trending"
	TabNew      Tab = "new"
	TabTopRated Tab = "top-rated"
	TabCreators Tab = "creators"
)

const (
	userCreator       = "You"
	userThumbnail     = "🎮"
	userTag           = "User Created"
	defaultUserRating = 4.0
)

// CommunityGame - карточка игры в сообществе.
type CommunityGame struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Creator     string     `yaml:"creator" json:"creator"`
	Description string     `yaml:"description" json:"description"`
	Rating      float64    `yaml:"rating" json:"rating"`
	Plays       int        `yaml:"plays" json:"plays"`
	Thumbnail   string     `yaml:"thumbnail" json:"thumbnail"`
	Tags        []string   `yaml:"tags" json:"tags"`
	Featured    bool       `yaml:"featured" json:"featured,omitempty"`
	CreatedAt   *time.Time `yaml:"-" json:"createdAt,omitempty"`
}

// Creator - избранный автор.
type Creator struct {
	Name           string  `yaml:"name" json:"name"`
	GamesCreated   int     `yaml:"gamesCreated" json:"gamesCreated"`
	TotalPlays     int     `yaml:"totalPlays" json:"totalPlays"`
	AvgRating      float64 `yaml:"avgRating" json:"avgRating"`
	Followers      int     `yaml:"followers" json:"followers"`
	Badge          string  `yaml:"badge" json:"badge"`
	Specialization string  `yaml:"specialization" json:"specialization"`
}

// CommunityView - ответ витрины. Для вкладки creators заполнен Creators, иначе Games.
type CommunityView struct {
	Tab      Tab             `json:"tab"`
	Query    string          `json:"query"`
	Games    []CommunityGame `json:"games,omitempty"`
	Creators []Creator       `json:"creators,omitempty"`
}

type communityData struct {
	Games    []CommunityGame `yaml:"games"`
	Creators []Creator       `yaml:"creators"`
}

func parseCommunity(raw []byte) (communityData, error) {
	var data communityData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return communityData{}, fmt.Errorf("failed to parse community data: %w", err)
	}
	return data, nil
}

// publishedAsCommunity превращает опубликованные игры устройства в карточки.
func publishedAsCommunity(games []models.Game) []CommunityGame {
	out := make([]CommunityGame, 0, len(games))
	for i := range games {
		g := games[i]
		if g.Status != models.GameStatusPublished {
			continue
		}
		createdAt := g.CreatedAt
		card := CommunityGame{
			ID:          g.ID,
			Title:       g.Title,
			Creator:     userCreator,
			Description: g.Description,
			Rating:      g.RatingOr(defaultUserRating),
			Plays:       g.PlayCount(),
			Thumbnail:   userThumbnail,
			Tags:        []string{userTag},
		}
		if !createdAt.IsZero() {
			card.CreatedAt = &createdAt
		}
		out = append(out, card)
	}
	return out
}

// FilterGames оставляет карточки, у которых запрос (без учета регистра) входит
// в название, имя автора или один из тегов.
func FilterGames(games []CommunityGame, query string) []CommunityGame {
	q := strings.ToLower(query)
	out := make([]CommunityGame, 0, len(games))
	for _, g := range games {
		if matches(g, q) {
			out = append(out, g)
		}
	}
	return out
}

func matches(g CommunityGame, q string) bool {
	if strings.Contains(strings.ToLower(g.Title), q) || strings.Contains(strings.ToLower(g.Creator), q) {
		return true
	}
	for _, tag := range g.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// SortGames упорядочивает карточки для вкладки. Сортировка устойчивая;
// карточки без даты создания считаются созданными в now. Неизвестная вкладка не сортирует.
func SortGames(games []CommunityGame, tab Tab, now time.Time) {
	switch tab {
	case TabTrending:
		sort.SliceStable(games, func(i, j int) bool { return games[i].Plays > games[j].Plays })
	case TabNew:
		created := func(g CommunityGame) time.Time {
			if g.CreatedAt == nil {
				return now
			}
			return *g.CreatedAt
		}
		sort.SliceStable(games, func(i, j int) bool { return created(games[i]).After(created(games[j])) })
	case TabTopRated:
		sort.SliceStable(games, func(i, j int) bool { return games[i].Rating > games[j].Rating })
	}
}

// Community строит витрину сообщества для устройства.
func (s *Service) Community(ctx context.Context, deviceID string, tab Tab, query string) (*CommunityView, error) {
	if tab == "" {
		tab = TabTrending
	}
	view := &CommunityView{Tab: tab, Query: query}
	if tab == TabCreators {
		view.Creators = append([]Creator(nil), s.community.Creators...)
		return view, nil
	}

	saved, err := s.games.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	all := append(publishedAsCommunity(saved), s.community.Games...)
	games := FilterGames(all, query)
	SortGames(games, tab, s.now())
	view.Games = games
	return view, nil
}
