// Package notify fans change events out to websocket subscribers.
package notify

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/iudanet/feedhub/pkg/api"
)

// DefaultBufferSize is the number of undelivered frames kept per subscriber.
const DefaultBufferSize = 16

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("notification hub closed")

// Subscription is one registered listener.
type Subscription struct {
	hub    *Hub
	events chan []byte
}

// Events returns the encoded frames. The channel is closed when the
// subscription is cancelled or the hub shuts down.
func (s *Subscription) Events() <-chan []byte {
	return s.events
}

// Cancel unregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.unsubscribe(s)
}

// Hub is the process-wide notification registry.
// Delivery is best effort: a subscriber whose buffer is full misses the event.
type Hub struct {
	logger     *slog.Logger
	subs       map[*Subscription]struct{}
	bufferSize int
	closed     bool
	mu         sync.Mutex
}

// NewHub creates a new hub
func NewHub(logger *slog.Logger, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		logger:     logger,
		subs:       make(map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new listener
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	sub := &Subscription{hub: h, events: make(chan []byte, h.bufferSize)}
	h.subs[sub] = struct{}{}
	return sub, nil
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.events)
	}
}

// Publish encodes {event: topic, data: payload} once and hands it to every
// subscriber without blocking.
func (h *Hub) Publish(topic string, payload any) {
	frame, err := json.Marshal(api.Event{Event: topic, Data: payload})
	if err != nil {
		h.logger.Error("failed to encode notification", slog.String("topic", topic), slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for sub := range h.subs {
		select {
		case sub.events <- frame:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		h.logger.Warn("notification dropped for slow subscribers",
			slog.String("topic", topic),
			slog.Int("dropped", dropped))
	}
}

// Len returns the number of active subscribers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Subsequent publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.events)
	}
}

// Handler returns the websocket endpoint. Any origin is accepted: the
// channel only carries public feed events.
func (h *Hub) Handler() http.Handler {
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   h.serveConn,
	}
}

func (h *Hub) serveConn(ws *websocket.Conn) {
	defer ws.Close()

	sub, err := h.Subscribe()
	if err != nil {
		return
	}
	defer sub.Cancel()

	remote := ws.Request().RemoteAddr
	h.logger.Debug("notification subscriber connected", slog.String("remote_addr", remote))
	defer h.logger.Debug("notification subscriber disconnected", slog.String("remote_addr", remote))

	// Клиент ничего не отправляет; чтение нужно, чтобы заметить закрытие
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		var discard string
		for {
			if err := websocket.Message.Receive(ws, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case frame, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := websocket.Message.Send(ws, string(frame)); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
