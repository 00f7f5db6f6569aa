package chat

import "rpg-creator/shared/models"

// Conversation - история, которая уходит генератору. Первое сообщение всегда системное.
type Conversation struct {
	messages []models.ChatMessage
}

// NewConversation создает разговор с системным сообщением для персонажа.
func NewConversation(persona string) *Conversation {
	return &Conversation{messages: []models.ChatMessage{{
		Role:    models.ChatRoleSystem,
		Content: "You are an AI Story Generator for RPG games. " + persona,
	}}}
}

// restoreConversation собирает разговор из сохраненных сообщений (без системного).
func restoreConversation(persona string, history []models.ChatMessage) *Conversation {
	c := NewConversation(persona)
	c.messages = append(c.messages, history...)
	return c
}

func (c *Conversation) AddMessage(role models.ChatRole, content string) {
	c.messages = append(c.messages, models.ChatMessage{Role: role, Content: content})
}

// Messages возвращает полный разговор, включая системное сообщение.
func (c *Conversation) Messages() []models.ChatMessage {
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// History возвращает разговор без системного сообщения.
func (c *Conversation) History() []models.ChatMessage {
	out := make([]models.ChatMessage, len(c.messages)-1)
	copy(out, c.messages[1:])
	return out
}

// Clear оставляет только системное сообщение.
func (c *Conversation) Clear() {
	c.messages = c.messages[:1]
}
