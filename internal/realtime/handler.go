package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/pkg/api"
)

// Path путь websocket endpoint
const Path = "/ws"

// SessionValidator проверяет сессию запроса на upgrade
type SessionValidator interface {
	ValidateRequest(r *http.Request) (*models.User, error)
}

// MembershipStore возвращает членство пользователя в household.
// Отсутствие членства: storage.ErrMembershipNotFound или nil membership
type MembershipStore interface {
	GetMembership(ctx context.Context, userID, householdID string) (*models.Membership, error)
}

// Config параметры соединений
type Config struct {
	AllowedOrigins []string // префиксы Origin; пусто - только localhost
	SendBuffer     int      // размер исходящего буфера соединения
	MaxMessageSize int64    // максимальный размер входящего сообщения
	MessageRate    float64  // входящих сообщений в секунду
	MessageBurst   int
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		SendBuffer:     64,
		MaxMessageSize: 64 * 1024,
		MessageRate:    20,
		MessageBurst:   40,
	}
}

// Handler принимает websocket соединения устройств
type Handler struct {
	hub       *Hub
	validator SessionValidator
	members   MembershipStore
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	cfg       Config
}

// NewHandler создает handler для Path
func NewHandler(hub *Hub, validator SessionValidator, members MembershipStore, cfg Config, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:       hub,
		validator: validator,
		members:   members,
		logger:    logger,
		cfg:       cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin validates WebSocket origin against configured allowed origins
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow requests with no origin header (CLI devices, tests)
	if origin == "" {
		return true
	}

	if len(h.cfg.AllowedOrigins) == 0 {
		return strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "https://localhost")
	}

	for _, allowed := range h.cfg.AllowedOrigins {
		if strings.HasPrefix(origin, allowed) {
			return true
		}
	}
	return false
}

// ServeHTTP проверяет сессию, выполняет upgrade и запускает pumps соединения
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.validator.ValidateRequest(r)
	if err != nil {
		status := http.StatusInternalServerError
		if apperr.Is(err, apperr.ErrAuthentication) {
			status = http.StatusUnauthorized
		}
		h.logger.Warn("WebSocket session rejected", "status", status, slog.Any("error", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader уже ответил клиенту
		h.logger.Warn("WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	// сессия могла истечь между проверкой и открытием сокета
	again, err := h.validator.ValidateRequest(r)
	if err != nil || again.ID != user.ID {
		h.logger.Warn("WebSocket session invalid after upgrade", "user_id", user.ID, slog.Any("error", err))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session invalid"))
		conn.Close()
		return
	}

	c := newClient(h.hub, conn, user, uuid.New().String(), h.cfg, h.members, h.logger)
	c.setState(StateAuthenticated)

	if !h.hub.addClient(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h.cfg.MaxMessageSize)
}
