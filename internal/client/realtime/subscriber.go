// Package realtime keeps the local cache current from the server's household event stream.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	stdsync "sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/client/sync"
	"github.com/iudanet/homesync/pkg/api"
)

const (
	// сервер шлет ping каждые 54s
	readTimeout  = 70 * time.Second
	writeTimeout = 10 * time.Second
	wsPath       = "/ws"
)

// Applier применяет изменение из события к локальному снимку
type Applier interface {
	ApplyRemote(ctx context.Context, householdID string, change api.Change) error
}

// Resyncer выполняет полный цикл синхронизации household
type Resyncer interface {
	SyncHousehold(ctx context.Context, householdID string) ([]*sync.CycleResult, error)
}

// EventHook вызывается для каждого принятого доменного события
type EventHook func(householdID string, event api.Event)

// Subscriber держит websocket соединение и переподключается с экспоненциальной задержкой.
// После каждого подключения household синхронизируются заново: события,
// пропущенные во время разрыва, не доставляются повторно
type Subscriber struct {
	applier    Applier
	resyncer   Resyncer
	logger     *slog.Logger
	dialer     *websocket.Dialer
	onEvent    EventHook
	url        string
	token      string
	households []string

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option настраивает Subscriber
type Option func(*Subscriber)

// WithBackoff задает начальную и максимальную задержку переподключения
func WithBackoff(initial, max time.Duration) Option {
	return func(s *Subscriber) {
		s.initialBackoff = initial
		s.maxBackoff = max
	}
}

// WithEventHook задает обработчик принятых событий
func WithEventHook(h EventHook) Option {
	return func(s *Subscriber) { s.onEvent = h }
}

// NewSubscriber creates a subscriber for the given households.
// serverURL is the HTTP base URL of the server.
func NewSubscriber(serverURL, token string, households []string, applier Applier, resyncer Resyncer, logger *slog.Logger, opts ...Option) (*Subscriber, error) {
	wsURL, err := websocketURL(serverURL)
	if err != nil {
		return nil, err
	}
	if len(households) == 0 {
		return nil, errors.New("no households to subscribe to")
	}

	s := &Subscriber{
		applier:        applier,
		resyncer:       resyncer,
		logger:         logger,
		dialer:         &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		url:            wsURL,
		token:          token,
		households:     households,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	u.Path += wsPath
	return u.String(), nil
}

// Run подключается и обрабатывает события до отмены ctx.
// Возвращает ошибку только если сессия отклонена сервером
func (s *Subscriber) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialBackoff
	b.MaxInterval = s.maxBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.session(ctx, b.Reset)
		if apperr.Is(err, apperr.ErrAuthentication) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("Realtime connection lost, reconnecting", "in", next, slog.Any("error", err))
		}),
	)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// session выполняет одно подключение: handshake, подписки, ресинхронизация и чтение событий
func (s *Subscriber) session(ctx context.Context, connected func()) error {
	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	conn, resp, err := s.dialer.DialContext(ctx, s.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return apperr.Authentication(err, "realtime session rejected")
		}
		return apperr.Transient(err, "dial realtime endpoint")
	}
	defer conn.Close()

	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeTimeout))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	hello, err := s.read(conn)
	if err != nil {
		return err
	}
	if hello.Type != api.MessageConnected {
		return apperr.Malformed(fmt.Errorf("unexpected first frame %q", hello.Type), "realtime handshake")
	}

	for _, h := range s.households {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(api.Envelope{Type: api.MessageSubscribe, HouseholdID: h}); err != nil {
			return apperr.Transient(err, "subscribe")
		}
	}

	connected()
	s.logger.Info("Realtime connected", "client_id", hello.Message, "households", s.households)

	g, gctx := errgroup.WithContext(ctx)
	queue := newResyncQueue()
	// после (пере)подключения состояние могло разойтись: полная сверка
	for _, h := range s.households {
		queue.add(h)
	}

	g.Go(func() error {
		<-gctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
		return conn.Close()
	})
	g.Go(func() error {
		s.resyncLoop(gctx, queue)
		return nil
	})
	g.Go(func() error {
		for {
			env, err := s.read(conn)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return err
			}
			s.handle(gctx, env, queue)
		}
	})

	return g.Wait()
}

func (s *Subscriber) read(conn *websocket.Conn) (*api.Envelope, error) {
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, apperr.Transient(err, "read realtime frame")
	}
	var env api.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperr.Malformed(err, "decode realtime frame")
	}
	return &env, nil
}

func (s *Subscriber) handle(ctx context.Context, env *api.Envelope, queue *resyncQueue) {
	switch env.Type {
	case api.MessageSubscribed, api.MessageUnsubscribed, api.MessagePong, api.MessageConnected:
		s.logger.Debug("Realtime control frame", "type", env.Type, "household_id", env.HouseholdID, "message", env.Message)
		return
	case api.MessageError:
		s.logger.Warn("Realtime server error", "household_id", env.HouseholdID, "message", env.Message)
		return
	}

	event, err := api.DecodeEvent(env)
	if err != nil {
		s.logger.Warn("Dropping malformed realtime event", "type", env.Type, slog.Any("error", err))
		return
	}
	householdID := event.Household()

	if s.onEvent != nil {
		s.onEvent(householdID, event)
	}

	change, err := api.ChangeFor(event)
	if err != nil {
		s.logger.Warn("Cannot apply realtime event", "type", env.Type, slog.Any("error", err))
		queue.add(householdID)
		return
	}
	if change.Resync {
		queue.add(householdID)
		return
	}
	if err := s.applier.ApplyRemote(ctx, householdID, change); err != nil {
		s.logger.Error("Failed to apply realtime event", "type", env.Type, "household_id", householdID, slog.Any("error", err))
		queue.add(householdID)
	}
}

func (s *Subscriber) resyncLoop(ctx context.Context, queue *resyncQueue) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-queue.wake:
		}
		for _, h := range queue.drain() {
			if _, err := s.resyncer.SyncHousehold(ctx, h); err != nil && ctx.Err() == nil {
				s.logger.Warn("Realtime resync failed", "household_id", h, slog.Any("error", err))
			}
		}
	}
}

// resyncQueue множество household, ожидающих сверки
type resyncQueue struct {
	pending map[string]bool
	wake    chan struct{}
	order   []string
	mu      stdsync.Mutex
}

func newResyncQueue() *resyncQueue {
	return &resyncQueue{pending: make(map[string]bool), wake: make(chan struct{}, 1)}
}

func (q *resyncQueue) add(householdID string) {
	q.mu.Lock()
	if !q.pending[householdID] {
		q.pending[householdID] = true
		q.order = append(q.order, householdID)
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *resyncQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.order
	q.order = nil
	q.pending = make(map[string]bool)
	return out
}
