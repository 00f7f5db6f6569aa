package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rpg-creator/internal/i18n"
	"rpg-creator/internal/session"
	"rpg-creator/shared/constants"
	"rpg-creator/shared/database"
	"rpg-creator/shared/middleware"
	"rpg-creator/shared/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type wsFixture struct {
	server    *httptest.Server
	hub       *Hub
	sessions  *session.Manager
	languages *i18n.Languages
}

func newFixture(t *testing.T) *wsFixture {
	t.Helper()
	storage := database.NewMemoryDeviceStorage()
	sessions := session.NewManager(storage, session.Options{HashCost: bcrypt.MinCost}, zap.NewNop())
	languages := i18n.NewLanguages(i18n.MustLoadEmbedded(), storage, zap.NewNop())
	hub := NewHub(sessions, languages, zap.NewNop())

	verify := func(_ context.Context, token string) (*models.DeviceClaims, error) {
		if !strings.HasPrefix(token, "dev-") {
			return nil, models.ErrTokenInvalid
		}
		return &models.DeviceClaims{DeviceID: token}, nil
	}
	e := echo.New()
	e.GET("/ws", NewHandler(hub, []string{"*"}, zap.NewNop()).ServeWS, middleware.DeviceAuth(verify, zap.NewNop()))
	server := httptest.NewServer(e)

	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})
	return &wsFixture{server: server, hub: hub, sessions: sessions, languages: languages}
}

func (f *wsFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHelloThenLanguageChange(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "dev-a")

	hello := readMessage(t, conn)
	assert.Equal(t, constants.WSEventHello, hello["type"])
	payload := hello["payload"].(map[string]any)
	assert.Equal(t, "dev-a", payload["deviceId"])
	assert.Equal(t, "en", payload["language"])
	assert.Nil(t, payload["identity"])

	require.Eventually(t, func() bool { return f.hub.Connected("dev-a") }, time.Second, 5*time.Millisecond)

	_, err := f.languages.Set(context.Background(), "dev-a", "ko-KR")
	require.NoError(t, err)

	msg := readMessage(t, conn)
	assert.Equal(t, constants.WSEventLanguageChanged, msg["type"])
	assert.Equal(t, constants.WSTopicI18n, msg["topic"])
	assert.Equal(t, "ko", msg["payload"].(map[string]any)["language"])
}

func TestIdentityChangeIsPushed(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "dev-b")
	readMessage(t, conn)
	require.Eventually(t, func() bool { return f.hub.Connected("dev-b") }, time.Second, 5*time.Millisecond)

	store, err := f.sessions.For(context.Background(), "dev-b")
	require.NoError(t, err)
	_, err = store.RegisterWithEmail(context.Background(), session.RegisterInput{
		Email: "hero@example.com", Username: "hero", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)

	msg := readMessage(t, conn)
	assert.Equal(t, constants.WSEventIdentityChanged, msg["type"])
	identity := msg["payload"].(map[string]any)["identity"].(map[string]any)
	assert.Equal(t, "hero", identity["username"])
}

func TestRejectsMissingToken(t *testing.T) {
	f := newFixture(t)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
	assert.True(t, errors.Is(err, websocket.ErrBadHandshake))
}

func TestSendToOfflineDevice(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.hub.SendToDevice("nobody", Message{Type: "x"}))
}

func TestNewConnectionReplacesOld(t *testing.T) {
	f := newFixture(t)
	first := f.dial(t, "dev-c")
	readMessage(t, first)
	require.Eventually(t, func() bool { return f.hub.Connected("dev-c") }, time.Second, 5*time.Millisecond)

	second := f.dial(t, "dev-c")
	readMessage(t, second)

	// старое соединение закрывается хабом
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	_, err := f.languages.Set(context.Background(), "dev-c", "ko")
	require.NoError(t, err)
	msg := readMessage(t, second)
	assert.Equal(t, constants.WSEventLanguageChanged, msg["type"])
}
