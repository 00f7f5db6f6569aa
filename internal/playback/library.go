// Package playback проигрывает игры: встроенные графы и авторский контент.
package playback

import (
	"embed"
	"fmt"

	"rpg-creator/shared/models"

	"gopkg.in/yaml.v3"
)

//go:embed samples/*.yaml
var samplesFS embed.FS

// SampleGame - встроенная демо-игра. Nodes пуст у игр без графа.
type SampleGame struct {
	ID          string             `yaml:"id" json:"id"`
	Title       string             `yaml:"title" json:"title"`
	Description string             `yaml:"description" json:"description"`
	Thumbnail   string             `yaml:"thumbnail" json:"thumbnail"`
	Genre       string             `yaml:"genre" json:"genre"`
	Difficulty  string             `yaml:"difficulty" json:"difficulty"`
	Playtime    string             `yaml:"playtime" json:"playtime"`
	Nodes       []models.StoryNode `yaml:"nodes" json:"-"`
}

// Game возвращает демо-игру в виде models.Game без сцен.
func (g SampleGame) Game() models.Game {
	return models.Game{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Scenes:      []models.Scene{},
	}
}

// Library - встроенные демо-игры и их графы.
type Library struct {
	games  []SampleGame
	graphs map[string][]models.StoryNode
}

type libraryFile struct {
	Games []SampleGame `yaml:"games"`
}

// LoadLibrary читает встроенный samples/games.yaml.
func LoadLibrary() (*Library, error) {
	raw, err := samplesFS.ReadFile("samples/games.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read sample games: %w", err)
	}
	return ParseLibrary(raw)
}

// MustLoadLibrary паникует, если встроенные игры не читаются.
func MustLoadLibrary() *Library {
	lib, err := LoadLibrary()
	if err != nil {
		panic(err)
	}
	return lib
}

// ParseLibrary разбирает YAML с демо-играми.
func ParseLibrary(raw []byte) (*Library, error) {
	var file libraryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sample games: %w", err)
	}
	lib := &Library{games: file.Games, graphs: make(map[string][]models.StoryNode, len(file.Games))}
	for _, g := range file.Games {
		if g.ID == "" {
			return nil, fmt.Errorf("sample game %q has no id", g.Title)
		}
		if _, dup := lib.graphs[g.ID]; dup {
			return nil, fmt.Errorf("duplicate sample game id %q", g.ID)
		}
		lib.graphs[g.ID] = g.Nodes
	}
	return lib, nil
}

// Samples возвращает демо-игры в порядке витрины.
func (l *Library) Samples() []SampleGame {
	out := make([]SampleGame, len(l.games))
	copy(out, l.games)
	return out
}

// Sample ищет демо-игру по ID.
func (l *Library) Sample(id string) (SampleGame, bool) {
	for _, g := range l.games {
		if g.ID == id {
			return g, true
		}
	}
	return SampleGame{}, false
}

// Node возвращает узел графа игры, если он существует.
func (l *Library) Node(gameID string, index int) (models.StoryNode, bool) {
	nodes := l.graphs[gameID]
	if index < 0 || index >= len(nodes) {
		return models.StoryNode{}, false
	}
	return nodes[index], true
}
