package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/pkg/db/dbtest"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/outbox/payloads"
)

func TestEmitWritesEnvelope(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc := NewService(repo, logger.Nop())

	wishlistID := uuid.New()
	userID := uuid.New()
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventWishlistItemAdded,
			AggregateType: enums.AggregateWishlist,
			AggregateID:   wishlistID,
			Actor:         &ActorRef{UserID: userID},
			Data:          payloads.WishlistItemAddedEvent{WishlistID: wishlistID, UserID: userID},
		})
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventWishlistItemAdded, rows[0].EventType)

	envelope, err := DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.Equal(t, userID, envelope.Actor.UserID)

	var data payloads.WishlistItemAddedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, wishlistID, data.WishlistID)
}

func TestEmitValidatesInput(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)

	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{}))
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{EventType: "order_created", AggregateType: enums.AggregateWishlist})
	})
	require.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	first := models.OutboxEvent{EventType: enums.EventWishlistItemAdded, AggregateType: enums.AggregateWishlist, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	second := models.OutboxEvent{EventType: enums.EventWishlistItemRemoved, AggregateType: enums.AggregateWishlist, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`), AttemptCount: 3}
	require.NoError(t, repo.Insert(conn, &first))
	require.NoError(t, repo.Insert(conn, &second))

	var fetched []models.OutboxEvent
	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		var err error
		fetched, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}))
	require.Len(t, fetched, 1, "rows at max attempts are skipped")
	require.Equal(t, first.ID, fetched[0].ID)

	require.NoError(t, repo.MarkFailedTx(conn, first.ID, errors.New("broker down")))
	var reloaded models.OutboxEvent
	require.NoError(t, conn.First(&reloaded, "id = ?", first.ID).Error)
	require.Equal(t, 1, reloaded.AttemptCount)
	require.NotNil(t, reloaded.LastError)

	require.NoError(t, repo.MarkPublishedTx(conn, first.ID))
	require.NoError(t, conn.First(&reloaded, "id = ?", first.ID).Error)
	require.NotNil(t, reloaded.PublishedAt)
	require.Nil(t, reloaded.LastError)

	pending, err := repo.CountPending()
	require.NoError(t, err)
	require.EqualValues(t, 1, pending)
}

type flakyTransport struct {
	calls int
	err   error
}

func (f *flakyTransport) Publish(context.Context, Message) error {
	f.calls++
	return f.err
}

func (f *flakyTransport) Ping(context.Context) error { return nil }
func (f *flakyTransport) Close() error               { return nil }

func TestBreakerTransportOpensAfterFailures(t *testing.T) {
	next := &flakyTransport{err: errors.New("unavailable")}
	breaker := NewBreakerTransport(next, BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute})

	ctx := context.Background()
	require.Error(t, breaker.Publish(ctx, Message{}))
	require.Error(t, breaker.Publish(ctx, Message{}))
	require.Equal(t, gobreaker.StateOpen, breaker.State())

	err := breaker.Publish(ctx, Message{})
	require.ErrorIs(t, err, ErrTransportUnavailable)
	require.Equal(t, 2, next.calls, "open breaker must not reach the transport")
}

func TestMessageForCarriesAttributes(t *testing.T) {
	payload, err := json.Marshal(PayloadEnvelope{Version: 1, EventID: "evt-1", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventWishlistItemMovedToCart,
		AggregateType: enums.AggregateWishlist,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
	msg := MessageFor(event)
	require.Equal(t, event.AggregateID.String(), msg.Key)
	require.Equal(t, "evt-1", msg.Attributes["event_id"])
	require.Equal(t, "wishlist_item_moved_to_cart", msg.Attributes["event_type"])
}
