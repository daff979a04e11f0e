package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
)

// ErrTransportUnavailable is returned while the circuit breaker is open.
var ErrTransportUnavailable = errors.New("outbox transport unavailable")

// Message is the transport-neutral form of a published outbox row.
type Message struct {
	Key        string
	Data       []byte
	Attributes map[string]string
}

// Transport delivers messages to a broker.
type Transport interface {
	Publish(ctx context.Context, msg Message) error
	Ping(ctx context.Context) error
	Close() error
}

// MessageFor converts an outbox row into a transport message keyed by aggregate.
func MessageFor(event models.OutboxEvent) Message {
	attrs := map[string]string{
		"outbox_id":      event.ID.String(),
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if envelope, err := DecodeEnvelope(event.Payload); err == nil && envelope.EventID != "" {
		attrs["event_id"] = envelope.EventID
	}
	return Message{
		Key:        event.AggregateID.String(),
		Data:       event.Payload,
		Attributes: attrs,
	}
}

// BreakerSettings tunes the circuit breaker guarding a transport.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	OnStateChange       func(name string, from, to gobreaker.State)
}

// BreakerTransport short-circuits publishes after repeated transport failures.
type BreakerTransport struct {
	next Transport
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerTransport(next Transport, settings BreakerSettings) *BreakerTransport {
	failures := settings.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	name := settings.Name
	if name == "" {
		name = "outbox-transport"
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: settings.OnStateChange,
	})
	return &BreakerTransport{next: next, cb: cb}
}

func (b *BreakerTransport) Publish(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Publish(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	return err
}

// State reports the current breaker state.
func (b *BreakerTransport) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerTransport) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *BreakerTransport) Close() error {
	return b.next.Close()
}
