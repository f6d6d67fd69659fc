package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/storage"
	"github.com/iudanet/homesync/pkg/api"
)

type validatorFunc func(r *http.Request) (*models.User, error)

func (f validatorFunc) ValidateRequest(r *http.Request) (*models.User, error) { return f(r) }

// tokenValidator принимает токен вида "user:<id>"
func tokenValidator() validatorFunc {
	return func(r *http.Request) (*models.User, error) {
		token := r.URL.Query().Get("token")
		id, ok := strings.CutPrefix(token, "user:")
		if !ok || id == "" {
			return nil, apperr.Authentication(errors.New("bad token"), "validate")
		}
		return &models.User{ID: id, Username: id}, nil
	}
}

type mockMembershipStore struct {
	err     error
	members map[string]map[string]bool // user -> households
}

func (m *mockMembershipStore) GetMembership(ctx context.Context, userID, householdID string) (*models.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.members[userID][householdID] {
		return nil, storage.ErrMembershipNotFound
	}
	return &models.Membership{UserID: userID, HouseholdID: householdID, Role: models.RoleMember}, nil
}

func newTestServer(t *testing.T, validator SessionValidator, members MembershipStore) (*Hub, *httptest.Server) {
	t.Helper()
	hub, _ := startHub(t)

	mux := http.NewServeMux()
	mux.Handle(Path, NewHandler(hub, validator, members, DefaultConfig(), setupTestLogger()))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + Path + "?token=" + token
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	env := readEnvelope(t, conn)
	require.Equal(t, api.MessageConnected, env.Type)
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) api.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env api.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func send(t *testing.T, conn *websocket.Conn, env api.Envelope) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(env))
}

func defaultMembers() *mockMembershipStore {
	return &mockMembershipStore{members: map[string]map[string]bool{
		"alice": {"h1": true},
		"bob":   {"h1": true, "h2": true},
	}}
}

func TestHandler_RejectsInvalidSession(t *testing.T) {
	hub, srv := newTestServer(t, tokenValidator(), defaultMembers())

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, 0, hub.Stats().Connections)
}

func TestHandler_SessionRevalidatedAfterUpgrade(t *testing.T) {
	var calls atomic.Int32
	validator := validatorFunc(func(r *http.Request) (*models.User, error) {
		if calls.Add(1) > 1 {
			return nil, apperr.Authentication(errors.New("expired"), "validate")
		}
		return &models.User{ID: "alice"}, nil
	})
	hub, srv := newTestServer(t, validator, defaultMembers())

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "x"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
	assert.Equal(t, 0, hub.Stats().Connections)
}

func TestHandler_SubscribeAndReceiveEvents(t *testing.T) {
	hub, srv := newTestServer(t, tokenValidator(), defaultMembers())

	alice := dial(t, srv, "user:alice")
	bob := dial(t, srv, "user:bob")

	send(t, alice, api.Envelope{Type: api.MessageSubscribe, HouseholdID: "h1"})
	env := readEnvelope(t, alice)
	assert.Equal(t, api.MessageSubscribed, env.Type)
	assert.Equal(t, "h1", env.HouseholdID)

	send(t, bob, api.Envelope{Type: api.MessageSubscribe, HouseholdID: "h2"})
	assert.Equal(t, api.MessageSubscribed, readEnvelope(t, bob).Type)

	st := hub.Stats()
	assert.Equal(t, 2, st.Connections)
	assert.Equal(t, map[string]int{"h1": 1, "h2": 1}, st.Households)

	n, err := hub.Broadcast(context.Background(), "h1", &api.ShoppingItemDeleted{HouseholdID: "h1", ItemID: "milk"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	env = readEnvelope(t, alice)
	assert.Equal(t, api.EventShoppingItemDeleted, env.Type)
	ev, err := api.DecodeEvent(&env)
	require.NoError(t, err)
	assert.Equal(t, "milk", ev.(*api.ShoppingItemDeleted).ItemID)

	// bob не подписан на h1: следующим будет ответ на ping
	send(t, bob, api.Envelope{Type: api.MessagePing})
	assert.Equal(t, api.MessagePong, readEnvelope(t, bob).Type)

	send(t, alice, api.Envelope{Type: api.MessageUnsubscribe, HouseholdID: "h1"})
	assert.Equal(t, api.MessageUnsubscribed, readEnvelope(t, alice).Type)
	assert.Equal(t, map[string]int{"h2": 1}, hub.Stats().Households)
}

func TestHandler_SubscribeWithoutMembership(t *testing.T) {
	hub, srv := newTestServer(t, tokenValidator(), defaultMembers())

	alice := dial(t, srv, "user:alice")
	send(t, alice, api.Envelope{Type: api.MessageSubscribe, HouseholdID: "h2"})

	env := readEnvelope(t, alice)
	assert.Equal(t, api.MessageError, env.Type)
	assert.Equal(t, "h2", env.HouseholdID)
	assert.Contains(t, env.Message, "not a member")

	st := hub.Stats()
	assert.Equal(t, 1, st.Connections)
	assert.Empty(t, st.Households)

	n, err := hub.Broadcast(context.Background(), "h2", &api.InventoryDeleted{HouseholdID: "h2", ItemID: "x"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHandler_MembershipLookupFailure(t *testing.T) {
	members := defaultMembers()
	members.err = errors.New("db down")
	hub, srv := newTestServer(t, tokenValidator(), members)

	alice := dial(t, srv, "user:alice")
	send(t, alice, api.Envelope{Type: api.MessageSubscribe, HouseholdID: "h1"})

	env := readEnvelope(t, alice)
	assert.Equal(t, api.MessageError, env.Type)
	assert.Contains(t, env.Message, "membership lookup failed")
	assert.Empty(t, hub.Stats().Households)
}

func TestHandler_MalformedMessagesKeepConnection(t *testing.T) {
	_, srv := newTestServer(t, tokenValidator(), defaultMembers())

	alice := dial(t, srv, "user:alice")

	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	env := readEnvelope(t, alice)
	assert.Equal(t, api.MessageError, env.Type)

	send(t, alice, api.Envelope{Type: "teleport"})
	env = readEnvelope(t, alice)
	assert.Equal(t, api.MessageError, env.Type)
	assert.Contains(t, env.Message, "unknown message type")

	send(t, alice, api.Envelope{Type: api.MessageSubscribe, HouseholdID: "../h1"})
	assert.Equal(t, api.MessageError, readEnvelope(t, alice).Type)

	send(t, alice, api.Envelope{Type: api.MessagePing})
	assert.Equal(t, api.MessagePong, readEnvelope(t, alice).Type)
}

func TestHandler_DisconnectCleansUp(t *testing.T) {
	hub, srv := newTestServer(t, tokenValidator(), defaultMembers())

	bob := dial(t, srv, "user:bob")
	send(t, bob, api.Envelope{Type: api.MessageSubscribe, HouseholdID: "h1"})
	require.Equal(t, api.MessageSubscribed, readEnvelope(t, bob).Type)
	send(t, bob, api.Envelope{Type: api.MessageSubscribe, HouseholdID: "h2"})
	require.Equal(t, api.MessageSubscribed, readEnvelope(t, bob).Type)

	require.NoError(t, bob.Close())

	assert.Eventually(t, func() bool {
		st := hub.Stats()
		return st.Connections == 0 && len(st.Households) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_CheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{name: "no origin", origin: "", want: true},
		{name: "localhost by default", origin: "http://localhost:3000", want: true},
		{name: "foreign by default", origin: "https://evil.example", want: false},
		{name: "configured origin", origin: "https://app.homesync.example", allowed: []string{"https://app.homesync.example"}, want: true},
		{name: "localhost not configured", origin: "http://localhost:3000", allowed: []string{"https://app.homesync.example"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AllowedOrigins = tt.allowed
			h := NewHandler(NewHub(setupTestLogger()), tokenValidator(), defaultMembers(), cfg, setupTestLogger())

			r := httptest.NewRequest(http.MethodGet, Path, nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.checkOrigin(r))
		})
	}
}
