// Package realtime отправляет устройствам уведомления о смене личности и языка по WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"rpg-creator/internal/i18n"
	"rpg-creator/internal/session"
	"rpg-creator/shared/constants"
	"rpg-creator/shared/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message - конверт сообщения клиенту.
type Message struct {
	Type    string `json:"type"`
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// HelloPayload - первое сообщение после подключения.
type HelloPayload struct {
	DeviceID string           `json:"deviceId"`
	Identity *models.Identity `json:"identity"`
	Language string           `json:"language"`
}

// Client - одно WebSocket-соединение устройства.
type Client struct {
	DeviceID string
	Conn     *websocket.Conn
	send     chan []byte

	unsubscribe []func()
}

func newClient(deviceID string, conn *websocket.Conn) *Client {
	return &Client{DeviceID: deviceID, Conn: conn, send: make(chan []byte, 256)}
}

// Hub держит по одному соединению на устройство и подписывает его на изменения сессии и языка.
type Hub struct {
	sessions  *session.Manager
	languages *i18n.Languages
	logger    *zap.Logger

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
}

// NewHub создает хаб и запускает цикл регистрации.
func NewHub(sessions *session.Manager, languages *i18n.Languages, logger *zap.Logger) *Hub {
	h := &Hub{
		sessions:   sessions,
		languages:  languages,
		logger:     logger.Named("RealtimeHub"),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	h.logger.Info("Hub запущен")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// у устройства остается только новое соединение
			if old, ok := h.clients[client.DeviceID]; ok {
				h.logger.Info("Закрытие старого соединения", zap.String("deviceID", client.DeviceID))
				h.dropLocked(old)
				_ = old.Conn.Close()
			}
			h.clients[client.DeviceID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.DeviceID]; ok && current == client {
				h.logger.Info("Дерегистрация клиента", zap.String("deviceID", client.DeviceID))
				h.dropLocked(client)
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, client := range h.clients {
				h.dropLocked(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// dropLocked отписывает клиента и закрывает его очередь. Вызывается под h.mu.
func (h *Hub) dropLocked(client *Client) {
	for _, unsubscribe := range client.unsubscribe {
		unsubscribe()
	}
	client.unsubscribe = nil
	delete(h.clients, client.DeviceID)
	close(client.send)
}

// Close останавливает хаб и закрывает очереди всех клиентов.
func (h *Hub) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Connect подписывает клиента на изменения устройства, кладет в очередь приветствие и регистрирует его.
func (h *Hub) Connect(ctx context.Context, client *Client) error {
	store, err := h.sessions.For(ctx, client.DeviceID)
	if err != nil {
		return err
	}
	lang, err := h.languages.Current(ctx, client.DeviceID)
	if err != nil {
		return err
	}

	h.enqueue(client, Message{
		Type:    constants.WSEventHello,
		Topic:   constants.WSTopicSession,
		Payload: HelloPayload{DeviceID: client.DeviceID, Identity: store.Current(), Language: lang},
	})

	client.unsubscribe = append(client.unsubscribe,
		store.Subscribe(func(change session.IdentityChange) {
			h.SendToDevice(change.DeviceID, Message{Type: constants.WSEventIdentityChanged, Topic: constants.WSTopicSession, Payload: change})
		}),
		h.languages.Subscribe(client.DeviceID, func(change i18n.LanguageChange) {
			h.SendToDevice(change.DeviceID, Message{Type: constants.WSEventLanguageChanged, Topic: constants.WSTopicI18n, Payload: change})
		}),
	)

	select {
	case h.register <- client:
		return nil
	case <-h.done:
		for _, unsubscribe := range client.unsubscribe {
			unsubscribe()
		}
		return context.Canceled
	}
}

// Disconnect снимает регистрацию клиента.
func (h *Hub) Disconnect(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToDevice ставит сообщение в очередь соединения устройства.
// Не блокируется: вызывается из слушателей сессии. Возвращает false, если устройство офлайн
// или его очередь переполнена.
func (h *Hub) SendToDevice(deviceID string, msg Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[deviceID]
	if !ok {
		h.logger.Debug("Устройство не подключено", zap.String("deviceID", deviceID))
		return false
	}
	return h.enqueue(client, msg)
}

// Connected сообщает, есть ли у устройства активное соединение.
func (h *Hub) Connected(deviceID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[deviceID]
	return ok
}

func (h *Hub) enqueue(client *Client, msg Message) bool {
	raw, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode realtime message", zap.String("type", msg.Type), zap.Error(err))
		return false
	}
	select {
	case client.send <- raw:
		return true
	default:
		h.logger.Warn("Очередь отправки переполнена", zap.String("deviceID", client.DeviceID))
		return false
	}
}
