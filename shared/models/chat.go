package models

// ChatRole - роль автора сообщения в разговоре с генератором текста.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage - одно сообщение разговора в формате удаленного эндпоинта.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
	// Type - тип генерации (story, character, ...), только для отображения истории.
	Type string `json:"type,omitempty"`
}
