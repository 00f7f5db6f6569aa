// Package chat - прокси к удаленному генератору текста для авторов игр.
package chat

// Persona - описание персонажа, которое дописывается к системному сообщению.
const Persona = "You are an expert RPG story writer and game designer. Help creators develop compelling narratives, interesting characters, engaging dialogue, and immersive world-building for their RPG games. Provide creative suggestions, plot hooks, character backstories, and detailed descriptions."

// ApologyMessage показывается вместо ответа, если генератор недоступен.
const ApologyMessage = "Sorry, I encountered an error generating content. Please try again."

// GenerationType - вид генерации; Prompt ставится перед вводом автора.
type GenerationType struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Prompt string `json:"prompt"`
}

// DefaultGenerationType используется, если вид не указан.
const DefaultGenerationType = "story"

// GenerationTypes - виды генерации в порядке отображения.
var GenerationTypes = []GenerationType{
	{ID: "story", Name: "Story Plot", Icon: "📖", Prompt: "Generate an engaging RPG story plot with"},
	{ID: "character", Name: "Character", Icon: "👤", Prompt: "Create a detailed RPG character with"},
	{ID: "dialogue", Name: "Dialogue", Icon: "💬", Prompt: "Write compelling dialogue for"},
	{ID: "world", Name: "World Building", Icon: "🌍", Prompt: "Design a fantasy world with"},
	{ID: "quest", Name: "Quest", Icon: "⚔️", Prompt: "Create an exciting quest involving"},
	{ID: "location", Name: "Location", Icon: "🏰", Prompt: "Describe a detailed location that"},
}

// QuickPrompts - готовые заготовки ввода.
var QuickPrompts = []string{
	"A mysterious forest with ancient secrets",
	"A brave knight on a redemption quest",
	"A magical academy with dark mysteries",
	"An epic battle between good and evil",
	"A lost treasure guarded by dragons",
	"A time-traveling adventure",
}

// FindGenerationType ищет вид генерации по ID.
func FindGenerationType(id string) (GenerationType, bool) {
	for _, t := range GenerationTypes {
		if t.ID == id {
			return t, true
		}
	}
	return GenerationType{}, false
}
