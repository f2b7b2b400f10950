// Package sse fans chat events out to open Server-Sent Events streams,
// grouped by channel.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidChannel = errors.New("invalid channel")
	ErrHubClosed      = errors.New("hub closed")
)

// Event is one frame. An empty Name produces a data-only frame.
type Event struct {
	Name string
	Data string
}

var (
	readyEvent = Event{Name: "ready", Data: `{"ok":true}`}
	pingEvent  = Event{Name: "ping", Data: `{}`}
)

// Config configures a Hub.
type Config struct {
	Channels   []string
	BufferSize int
	Heartbeat  time.Duration
}

// Broker relays published frames to other instances.
type Broker interface {
	Publish(ctx context.Context, env Envelope) error
}

// Envelope is a frame travelling between instances.
type Envelope struct {
	Origin  string          `json:"origin"`
	Channel string          `json:"channel"`
	Event   string          `json:"event,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Subscriber is one open stream. Its events channel is closed when the
// subscriber is removed or the hub shuts down.
type Subscriber struct {
	channel string
	send    chan Event
}

// Channel returns the channel the subscriber listens to.
func (s *Subscriber) Channel() string { return s.channel }

// Events returns the frames queued for the subscriber.
func (s *Subscriber) Events() <-chan Event { return s.send }

// Hub maintains the set of open streams and broadcasts frames to them.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
	channels    map[string]struct{}
	closed      bool

	bufferSize int
	heartbeat  time.Duration
	origin     string
	broker     Broker
	observer   func(channel string, count int)
	logger     zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(cfg Config, logger zerolog.Logger) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 32
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 25 * time.Second
	}
	channels := make(map[string]struct{}, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		channels[ch] = struct{}{}
	}
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
		channels:    channels,
		bufferSize:  cfg.BufferSize,
		heartbeat:   cfg.Heartbeat,
		origin:      uuid.New().String(),
		logger:      logger,
	}
}

// Origin identifies this instance in broker envelopes.
func (h *Hub) Origin() string { return h.origin }

// SetBroker relays every publish through b in addition to local delivery.
func (h *Hub) SetBroker(b Broker) { h.broker = b }

// SetObserver registers a callback fired with the subscriber count of a
// channel whenever it changes.
func (h *Hub) SetObserver(fn func(channel string, count int)) { h.observer = fn }

// ValidChannel reports whether channel is known to the hub.
func (h *Hub) ValidChannel(channel string) bool {
	_, ok := h.channels[channel]
	return ok
}

// Subscribe registers a stream on channel and queues the ready frame.
func (h *Hub) Subscribe(channel string) (*Subscriber, error) {
	if !h.ValidChannel(channel) {
		return nil, ErrInvalidChannel
	}

	sub := &Subscriber{channel: channel, send: make(chan Event, h.bufferSize)}
	sub.send <- readyEvent

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	if _, ok := h.subscribers[channel]; !ok {
		h.subscribers[channel] = make(map[*Subscriber]struct{})
	}
	h.subscribers[channel][sub] = struct{}{}
	count := len(h.subscribers[channel])
	h.mu.Unlock()

	h.notify(channel, count)
	h.logger.Debug().Str("channel", channel).Int("subscribers", count).Msg("Stream subscribed")
	return sub, nil
}

// Unsubscribe removes sub and closes its events channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	subs, ok := h.subscribers[sub.channel]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := subs[sub]; !ok {
		h.mu.Unlock()
		return
	}
	delete(subs, sub)
	close(sub.send)
	count := len(subs)
	if count == 0 {
		delete(h.subscribers, sub.channel)
	}
	h.mu.Unlock()

	h.notify(sub.channel, count)
	h.logger.Debug().Str("channel", sub.channel).Int("subscribers", count).Msg("Stream unsubscribed")
}

// Publish marshals payload into a data-only frame for channel, or for
// every channel when channel is empty. Delivery is best effort.
func (h *Hub) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.deliver(channel, Event{Data: string(data)})

	if h.broker != nil {
		env := Envelope{Origin: h.origin, Channel: channel, Data: data}
		if err := h.broker.Publish(ctx, env); err != nil {
			h.logger.Warn().Err(err).Str("channel", channel).Msg("Failed to relay chat event")
		}
	}
	return nil
}

// DeliverRemote hands a frame received from the broker to local streams.
// Frames published by this instance are ignored.
func (h *Hub) DeliverRemote(env Envelope) {
	if env.Origin == h.origin {
		return
	}
	h.deliver(env.Channel, Event{Name: env.Event, Data: string(env.Data)})
}

// deliver writes ev to every matching subscriber without blocking; a full
// buffer drops the frame for that subscriber only.
func (h *Hub) deliver(channel string, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch, subs := range h.subscribers {
		if channel != "" && ch != channel {
			continue
		}
		for sub := range subs {
			select {
			case sub.send <- ev:
				delivered++
			default:
				h.logger.Warn().Str("channel", ch).Msg("Dropped frame for slow stream")
			}
		}
	}
	return delivered
}

// Count returns the number of open streams on channel.
func (h *Hub) Count(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

// Run sends the heartbeat until ctx is done, then closes every stream.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return nil
		case <-ticker.C:
			h.deliver("", pingEvent)
		}
	}
}

// Close ends every open stream and refuses new subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	channels := make([]string, 0, len(h.subscribers))
	for ch, subs := range h.subscribers {
		for sub := range subs {
			close(sub.send)
		}
		channels = append(channels, ch)
	}
	h.subscribers = make(map[string]map[*Subscriber]struct{})
	h.mu.Unlock()

	for _, ch := range channels {
		h.notify(ch, 0)
	}
	h.logger.Info().Msg("Chat hub closed")
}

func (h *Hub) notify(channel string, count int) {
	if h.observer != nil {
		h.observer(channel, count)
	}
}
