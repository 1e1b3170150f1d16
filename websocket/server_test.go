package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"collabo/messaging"
	"collabo/middleware"
	"collabo/models"
)

type memStore struct {
	mu       sync.Mutex
	appended []models.Message
}

func (s *memStore) AppendMessage(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, msg)
	return nil
}

func (s *memStore) messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.appended))
	copy(out, s.appended)
	return out
}

type testEnv struct {
	ts       *httptest.Server
	registry *messaging.Registry
	store    *memStore
	auth     *middleware.Auth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := middleware.NewAuth("test-secret", time.Hour)
	registry := messaging.NewRegistry()
	store := &memStore{}
	router := messaging.NewRouter(registry, store, zerolog.Nop())
	srv := NewServer(registry, router, auth, zerolog.Nop())

	engine := gin.New()
	engine.GET("/ws", srv.Handle)

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, registry: registry, store: store, auth: auth}
}

// connect dials the endpoint as userID and consumes the welcome frame.
func (e *testEnv) connect(t *testing.T, userID string) *websocket.Conn {
	t.Helper()

	token, err := e.auth.GenerateToken(userID)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	env := readEnvelope(t, conn)
	require.Equal(t, "connected", env.Type)
	return conn
}

type rawEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readEnvelope(t *testing.T, conn *websocket.Conn) rawEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env rawEnvelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestHandshakeRefusedWithoutValidToken(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws?token=not-a-token"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	url = "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/ws"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLiveDeliveryToConnectedReceiver(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	bob := env.connect(t, "bob")
	alice := env.connect(t, "alice")

	req.NoError(alice.WriteJSON(messaging.Payload{ReceiverID: "bob", Text: "hi"}))

	got := readEnvelope(t, bob)
	req.Equal("message", got.Type)

	var msg models.Message
	req.NoError(json.Unmarshal(got.Payload, &msg))
	req.Equal("hi", msg.Text)
	req.Equal("alice", msg.SenderID)
	req.Equal(models.StatusDelivered, msg.Status)

	stored := env.store.messages()
	req.Len(stored, 1)
	req.Equal(models.StatusDelivered, stored[0].Status)
}

func TestOfflineReceiverGetsStoredOnly(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := env.connect(t, "alice")
	req.NoError(alice.WriteJSON(messaging.Payload{ReceiverID: "carol", Text: "see you"}))

	waitFor(t, func() bool { return len(env.store.messages()) == 1 })
	req.Equal(models.StatusSent, env.store.messages()[0].Status)
}

func TestMalformedPayloadSignalledNotPersisted(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	alice := env.connect(t, "alice")
	req.NoError(alice.WriteJSON(messaging.Payload{Text: "to nobody"}))

	got := readEnvelope(t, alice)
	req.Equal("error", got.Type)

	var body map[string]string
	req.NoError(json.Unmarshal(got.Payload, &body))
	req.Equal("UNPROCESSABLE", body["code"])
	req.Empty(env.store.messages())
}

func TestDisconnectCleansUpRegistry(t *testing.T) {
	env := newTestEnv(t)

	bob := env.connect(t, "bob")
	waitFor(t, func() bool {
		_, ok := env.registry.Lookup("bob")
		return ok
	})

	bob.Close()
	waitFor(t, func() bool {
		_, ok := env.registry.Lookup("bob")
		return !ok
	})
}

func TestDuplicateLoginDisplacesOldConnection(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	first := env.connect(t, "bob")
	second := env.connect(t, "bob")

	// The first socket is closed by the server once displaced.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var frame rawEnvelope
		if err := first.ReadJSON(&frame); err != nil {
			break
		}
	}

	// Messages reach only the new connection.
	alice := env.connect(t, "alice")
	req.NoError(alice.WriteJSON(messaging.Payload{ReceiverID: "bob", Text: "hello again"}))

	got := readEnvelope(t, second)
	req.Equal("message", got.Type)

	// bob counts once despite two logins.
	req.Equal(2, env.registry.Count())
}
