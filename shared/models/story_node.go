package models

// Choice - исходящее ребро узла истории.
type Choice struct {
	Text string `json:"text" yaml:"text"`
	Next int    `json:"next" yaml:"next"`
}

// StoryNode - единица повествования на этапе проигрывания: текст и варианты выбора.
type StoryNode struct {
	Text    string   `json:"text" yaml:"text"`
	Choices []Choice `json:"choices" yaml:"choices"`
}

// PlayerStats - характеристики игрока в сессии.
type PlayerStats struct {
	Health     int `json:"health"`
	Mana       int `json:"mana"`
	Level      int `json:"level"`
	Experience int `json:"experience"`
}

// DefaultPlayerStats возвращает характеристики нового (или перезапущенного) игрока.
func DefaultPlayerStats() PlayerStats {
	return PlayerStats{Health: 100, Mana: 50, Level: 1, Experience: 0}
}
