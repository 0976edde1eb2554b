// Package events publishes storefront activity (sign-ins, placed orders) to
// Kafka. Publishing is best-effort: failures are logged and counted, never
// returned to the user.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mercadotech/internal/metrics"
)

const (
	TopicUser  = "user_events"
	TopicOrder = "order_events"
)

const (
	TypeUserLoggedIn   = "user_logged_in"
	TypeUserRegistered = "user_registered"
	TypeUserLoggedOut  = "user_logged_out"
	TypeOrderPlaced    = "order_placed"
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

type Event struct {
	Type    string           `json:"type"`
	UserID  string           `json:"userID"`
	Email   string           `json:"email,omitempty"`
	Role    string           `json:"role,omitempty"`
	OrderID string           `json:"orderID,omitempty"`
	Total   *decimal.Decimal `json:"total,omitempty"`
	Stores  []string         `json:"stores,omitempty"`
	At      time.Time        `json:"at"`
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                            { return nil }

// New returns a Kafka producer, or Nop when brokers is empty.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewProducer(brokers)
}

type Emitter struct {
	pub     Publisher
	log     zerolog.Logger
	timeout time.Duration
	now     func() time.Time

	inflight sync.WaitGroup
}

func NewEmitter(pub Publisher, log zerolog.Logger) *Emitter {
	return &Emitter{
		pub:     pub,
		log:     log.With().Str("component", "events").Logger(),
		timeout: writeTimeout,
		now:     time.Now,
	}
}

// Emit publishes ev keyed by its user id in the background and returns at
// once. The publish outlives the caller's context, bounded by the write
// timeout.
func (e *Emitter) Emit(ctx context.Context, topic string, ev Event) {
	if ev.At.IsZero() {
		ev.At = e.now().UTC()
	}
	ctx = context.WithoutCancel(ctx)

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		err := e.pub.PublishEvent(ctx, topic, ev.UserID, ev)
		metrics.EventsPublishedTotal.WithLabelValues(topic, metrics.Result(err)).Inc()
		if err != nil {
			e.log.Error().Err(err).Str("topic", topic).Str("type", ev.Type).Msg("kafka publish error")
		}
	}()
}

// Wait blocks until in-flight publishes have finished.
func (e *Emitter) Wait() {
	e.inflight.Wait()
}
