package constants

// Типы сообщений, которые хаб отправляет клиенту по WebSocket.
const (
	WSEventIdentityChanged = "identity_changed"
	WSEventLanguageChanged = "language_changed"
	WSEventHello           = "hello"
)

// Топики сообщений WebSocket.
const (
	WSTopicSession = "session"
	WSTopicI18n    = "i18n"
)
