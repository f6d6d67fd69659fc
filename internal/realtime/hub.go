// Package realtime fans household domain events out to connected devices over websockets.
//
// The Hub is an actor: Run owns the connection registry and the household
// subscription index, and every other goroutine talks to it through channels.
// Only the hub sends to or closes a connection's outbound buffer.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/homesync/pkg/api"
)

// ErrHubStopped возвращается, когда Run уже завершился
var ErrHubStopped = errors.New("realtime hub stopped")

// Stats снимок состояния hub
type Stats struct {
	Households  map[string]int // количество подписчиков на household (только > 0)
	Connections int
}

type subscription struct {
	client      *Client
	reply       chan int // количество подписок клиента после операции, -1 если клиент не зарегистрирован
	householdID string
}

type broadcastRequest struct {
	reply       chan int
	householdID string
	frame       []byte
}

type directMessage struct {
	client *Client
	frame  []byte
}

// Hub держит реестр соединений и индекс подписок household
type Hub struct {
	logger      *slog.Logger
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan broadcastRequest
	direct      chan directMessage
	stats       chan chan Stats
	done        chan struct{}

	// принадлежат goroutine Run
	clients    map[string]*Client
	households map[string]map[string]*Client
}

// NewHub создает hub. Run должен быть запущен до приема соединений
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		broadcast:   make(chan broadcastRequest),
		direct:      make(chan directMessage, 256),
		stats:       make(chan chan Stats),
		done:        make(chan struct{}),
		clients:     make(map[string]*Client),
		households:  make(map[string]map[string]*Client),
	}
}

// Run обрабатывает запросы до отмены ctx, затем закрывает все соединения
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, c := range h.clients {
				h.remove(c, "server shutdown")
			}
			h.logger.Info("Realtime hub stopped")
			return

		case c := <-h.register:
			h.clients[c.id] = c
			h.enqueue(c, controlFrame(api.MessageConnected, "", c.id))
			h.logger.Info("Client connected", "client_id", c.id, "user_id", c.user.ID, "total_clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; ok {
				h.remove(c, "disconnected")
			}

		case s := <-h.subscribe:
			s.reply <- h.handleSubscribe(s)

		case s := <-h.unsubscribe:
			s.reply <- h.handleUnsubscribe(s)

		case req := <-h.broadcast:
			req.reply <- h.handleBroadcast(req)

		case m := <-h.direct:
			if _, ok := h.clients[m.client.id]; ok {
				h.enqueue(m.client, m.frame)
			}

		case reply := <-h.stats:
			reply <- h.snapshot()
		}
	}
}

func (h *Hub) handleSubscribe(s subscription) int {
	c := s.client
	if _, ok := h.clients[c.id]; !ok {
		return -1
	}

	members, ok := h.households[s.householdID]
	if !ok {
		members = make(map[string]*Client)
		h.households[s.householdID] = members
	}
	members[c.id] = c
	c.subscribed[s.householdID] = struct{}{}

	h.enqueue(c, controlFrame(api.MessageSubscribed, s.householdID, ""))
	h.logger.Debug("Client subscribed", "client_id", c.id, "household_id", s.householdID, "subscribers", len(members))
	return len(c.subscribed)
}

func (h *Hub) handleUnsubscribe(s subscription) int {
	c := s.client
	if _, ok := h.clients[c.id]; !ok {
		return -1
	}

	h.dropSubscription(c, s.householdID)
	h.enqueue(c, controlFrame(api.MessageUnsubscribed, s.householdID, ""))
	return len(c.subscribed)
}

// handleBroadcast рассылает уже сериализованный кадр подписчикам household
func (h *Hub) handleBroadcast(req broadcastRequest) int {
	members := h.households[req.householdID]
	sent := 0
	for _, c := range members {
		select {
		case c.send <- req.frame:
			sent++
		default:
			// буфер переполнен: медленный клиент исключается
			h.logger.Warn("Client send buffer full, evicting", "client_id", c.id, "household_id", req.householdID)
			h.remove(c, "send buffer full")
		}
	}
	return sent
}

// enqueue кладет кадр в буфер клиента без блокировки
func (h *Hub) enqueue(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.logger.Warn("Client send buffer full, evicting", "client_id", c.id)
		h.remove(c, "send buffer full")
	}
}

// remove удаляет клиента из реестра и всех подписок, затем закрывает его буфер
func (h *Hub) remove(c *Client, reason string) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	for householdID := range c.subscribed {
		h.dropSubscription(c, householdID)
	}
	close(c.send)

	h.logger.Info("Client removed", "client_id", c.id, "reason", reason, "total_clients", len(h.clients))
}

func (h *Hub) dropSubscription(c *Client, householdID string) {
	delete(c.subscribed, householdID)
	members, ok := h.households[householdID]
	if !ok {
		return
	}
	delete(members, c.id)
	if len(members) == 0 {
		delete(h.households, householdID)
	}
}

func (h *Hub) snapshot() Stats {
	st := Stats{Connections: len(h.clients), Households: make(map[string]int, len(h.households))}
	for id, members := range h.households {
		st.Households[id] = len(members)
	}
	return st
}

// Broadcast доставляет событие всем подписчикам household.
// Событие сериализуется один раз; возвращает число соединений, принявших кадр
func (h *Hub) Broadcast(ctx context.Context, householdID string, event api.Event) (int, error) {
	if event == nil {
		return 0, fmt.Errorf("%w: nil event", api.ErrInvalidMessage)
	}
	if event.Household() != householdID {
		return 0, fmt.Errorf("%w: event household %s does not match %s",
			api.ErrInvalidMessage, event.Household(), householdID)
	}

	frame, err := api.EncodeEvent(event)
	if err != nil {
		return 0, err
	}

	req := broadcastRequest{householdID: householdID, frame: frame, reply: make(chan int, 1)}
	select {
	case h.broadcast <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-h.done:
		return 0, ErrHubStopped
	}

	select {
	case n := <-req.reply:
		return n, nil
	case <-h.done:
		return 0, ErrHubStopped
	}
}

// Stats возвращает количество соединений и подписчиков по household
func (h *Hub) Stats() Stats {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{Households: map[string]int{}}
	}
	select {
	case st := <-reply:
		return st
	case <-h.done:
		return Stats{Households: map[string]int{}}
	}
}

func (h *Hub) addClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) removeClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) request(ch chan subscription, c *Client, householdID string) (int, error) {
	s := subscription{client: c, householdID: householdID, reply: make(chan int, 1)}
	select {
	case ch <- s:
	case <-h.done:
		return 0, ErrHubStopped
	}
	select {
	case n := <-s.reply:
		return n, nil
	case <-h.done:
		return 0, ErrHubStopped
	}
}

func (h *Hub) addSubscription(c *Client, householdID string) (int, error) {
	return h.request(h.subscribe, c, householdID)
}

func (h *Hub) dropClientSubscription(c *Client, householdID string) (int, error) {
	return h.request(h.unsubscribe, c, householdID)
}

// sendTo ставит управляющий кадр в очередь конкретному клиенту
func (h *Hub) sendTo(c *Client, frame []byte) {
	select {
	case h.direct <- directMessage{client: c, frame: frame}:
	case <-h.done:
	}
}
