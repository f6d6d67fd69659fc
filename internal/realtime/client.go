package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/storage"
	"github.com/iudanet/homesync/internal/validation"
	"github.com/iudanet/homesync/pkg/api"
)

// WebSocket timeout constants following Gorilla best practices
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Time allowed for a membership lookup
	lookupTimeout = 5 * time.Second
)

// ConnState состояние соединения
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateAuthenticated
	StateSubscribed
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateSubscribed:
		return "subscribed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client represents a WebSocket connection of one device
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	user    *models.User
	members MembershipStore
	limiter *rate.Limiter
	logger  *slog.Logger
	send    chan []byte // закрывается только hub
	id      string
	state   atomic.Int32

	subscribed map[string]struct{} // принадлежит goroutine hub
}

func newClient(hub *Hub, conn *websocket.Conn, user *models.User, id string, cfg Config, members MembershipStore, logger *slog.Logger) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		user:       user,
		members:    members,
		limiter:    rate.NewLimiter(rate.Limit(cfg.MessageRate), cfg.MessageBurst),
		logger:     logger.With("client_id", id, "user_id", user.ID),
		send:       make(chan []byte, cfg.SendBuffer),
		id:         id,
		subscribed: make(map[string]struct{}),
	}
}

// State возвращает текущее состояние соединения
func (c *Client) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *Client) setState(s ConnState) {
	c.state.Store(int32(s))
}

// readPump читает сообщения клиента. Запросы membership выполняются здесь, не в hub
func (c *Client) readPump(maxMessageSize int64) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.setState(StateClosed)
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				c.logger.Warn("WebSocket read error", slog.Any("error", err))
			}
			return
		}

		if !c.limiter.Allow() {
			c.sendError("", "rate limit exceeded")
			continue
		}

		env, err := api.DecodeClientMessage(raw)
		if err != nil {
			// соединение сохраняется
			c.logger.Debug("Malformed client message", slog.Any("error", err))
			c.sendError("", err.Error())
			continue
		}

		c.route(ctx, env)
	}
}

func (c *Client) route(ctx context.Context, env *api.Envelope) {
	switch env.Type {
	case api.MessagePing:
		c.hub.sendTo(c, controlFrame(api.MessagePong, "", ""))

	case api.MessageSubscribe:
		if err := validation.ValidateHouseholdID(env.HouseholdID); err != nil {
			c.sendError(env.HouseholdID, err.Error())
			return
		}
		if !c.isMember(ctx, env.HouseholdID) {
			return
		}
		n, err := c.hub.addSubscription(c, env.HouseholdID)
		if err == nil && n > 0 {
			c.setState(StateSubscribed)
		}

	case api.MessageUnsubscribe:
		n, err := c.hub.dropClientSubscription(c, env.HouseholdID)
		if err == nil && n == 0 {
			c.setState(StateAuthenticated)
		}
	}
}

// isMember проверяет членство и сообщает клиенту об отказе
func (c *Client) isMember(ctx context.Context, householdID string) bool {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	m, err := c.members.GetMembership(lookupCtx, c.user.ID, householdID)
	switch {
	case err == nil && m != nil:
		return true
	case err == nil, errors.Is(err, storage.ErrMembershipNotFound):
		c.logger.Warn("Subscribe rejected: not a member", "household_id", householdID)
		c.sendError(householdID, "not a member of household")
	default:
		c.logger.Error("Membership lookup failed", "household_id", householdID, slog.Any("error", err))
		c.sendError(householdID, "membership lookup failed")
	}
	return false
}

func (c *Client) sendError(householdID, message string) {
	c.hub.sendTo(c, controlFrame(api.MessageError, householdID, message))
}

// writePump единственный писатель в соединение
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub закрыл буфер: исключение или остановка сервера
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("WebSocket write error", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func controlFrame(t api.MessageType, householdID, message string) []byte {
	// Envelope всегда сериализуется
	frame, _ := json.Marshal(api.Envelope{Type: t, HouseholdID: householdID, Message: message})
	return frame
}
