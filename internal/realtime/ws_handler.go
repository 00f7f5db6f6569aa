package realtime

import (
	"net/http"
	"time"

	"rpg-creator/shared/middleware"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Клиент ничего не присылает, кроме control-фреймов.
	maxMessageSize = 512
)

// Handler поднимает WebSocket для устройства, уже проверенного middleware.DeviceAuth.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler создает обработчик. allowedOrigins "*" разрешает любой Origin.
func NewHandler(hub *Hub, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.Named("WebSocketHandler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeWS - GET /ws?token=<device token>.
func (h *Handler) ServeWS(c echo.Context) error {
	deviceID, ok := middleware.DeviceIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "device token required")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// upgrader уже ответил клиенту
		h.logger.Warn("Failed to upgrade connection", zap.String("deviceID", deviceID), zap.Error(err))
		return nil
	}

	client := newClient(deviceID, conn)
	if err := h.hub.Connect(c.Request().Context(), client); err != nil {
		h.logger.Error("Failed to connect realtime client", zap.String("deviceID", deviceID), zap.Error(err))
		_ = conn.Close()
		return nil
	}
	h.logger.Info("WebSocket connection established", zap.String("deviceID", deviceID))

	log := h.logger.With(zap.String("deviceID", deviceID))
	go client.writePump(log)
	go client.readPump(h.hub, log)
	return nil
}

// readPump читает control-фреймы до закрытия соединения.
func (c *Client) readPump(hub *Hub, logger *zap.Logger) {
	defer func() {
		hub.Disconnect(c)
		_ = c.Conn.Close()
		logger.Debug("readPump finished")
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		logger.Debug("Received unexpected message from client (ignored)")
	}
}

// writePump переносит очередь send в соединение и шлет пинги.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		logger.Debug("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
