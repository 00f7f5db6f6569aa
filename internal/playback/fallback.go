package playback

import (
	"math/rand/v2"
	"sync"

	"rpg-creator/shared/models"
)

// FallbackGenerator придумывает узел, когда в графе нет ребра для выбора.
// Результат всегда содержит непустой текст и ровно три варианта.
type FallbackGenerator interface {
	Generate() models.StoryNode
}

var fallbackTexts = []string{
	"Your choice leads you to new discoveries...",
	"The path ahead becomes clearer as you make your decision...",
	"Something unexpected happens as a result of your action...",
	"You feel the weight of your decision as the story unfolds...",
}

var fallbackChoiceTexts = []string{
	"Continue forward",
	"Rest and recover",
	"Investigate further",
}

// fallbackTargetRange - цели выбора берутся равномерно из [0, fallbackTargetRange).
const fallbackTargetRange = 5

var _ FallbackGenerator = (*RandomFallback)(nil)

// RandomFallback выбирает текст и цели равномерно случайно.
type RandomFallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomFallback создает генератор поверх переданного источника.
// nil означает источник, засеянный случайно.
func NewRandomFallback(src rand.Source) *RandomFallback {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomFallback{rng: rand.New(src)}
}

func (f *RandomFallback) Generate() models.StoryNode {
	f.mu.Lock()
	defer f.mu.Unlock()

	node := models.StoryNode{
		Text:    fallbackTexts[f.rng.IntN(len(fallbackTexts))],
		Choices: make([]models.Choice, 0, len(fallbackChoiceTexts)),
	}
	for _, text := range fallbackChoiceTexts {
		node.Choices = append(node.Choices, models.Choice{Text: text, Next: f.rng.IntN(fallbackTargetRange)})
	}
	return node
}
