package maintenance

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wishlist-backend/internal/cart"
	"github.com/angelmondragon/wishlist-backend/pkg/db/dbtest"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/outbox"
)

func TestOutboxRetentionJobDeletesOldPublishedRows(t *testing.T) {
	client, conn := dbtest.OpenClient(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	old := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)
	rows := []*models.OutboxEvent{
		outboxRow(&old),
		outboxRow(&recent),
		outboxRow(nil),
	}
	for _, row := range rows {
		require.NoError(t, conn.Create(row).Error)
	}

	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.Nop(),
		DB:         client,
		Repository: outbox.NewRepository(conn),
	})
	require.NoError(t, err)
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	var remaining []models.OutboxEvent
	require.NoError(t, conn.Order("created_at").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	require.NotContains(t, ids, rows[0].ID)
}

func TestEmptyCartJobKeepsCartsWithLines(t *testing.T) {
	conn := dbtest.Open(t)
	user := dbtest.MustCreateUser(t, conn)
	_, variants := dbtest.MustCreateProduct(t, conn, "mug", dbtest.VariantFixture{
		Code:   "mug-blue",
		Prices: map[string]int{"web": 1200},
	})
	repo := cart.NewRepository(conn)
	ctx := context.Background()
	longAgo := time.Now().UTC().Add(-60 * 24 * time.Hour)

	staleEmpty := &models.CartRecord{UserID: user.ID, ChannelCode: "web", Currency: enums.CurrencyUSD}
	staleFull := &models.CartRecord{UserID: user.ID, ChannelCode: "shop", Currency: enums.CurrencyUSD}
	freshEmpty := &models.CartRecord{UserID: user.ID, ChannelCode: "app", Currency: enums.CurrencyUSD}
	for _, record := range []*models.CartRecord{staleEmpty, staleFull, freshEmpty} {
		created, err := repo.Create(ctx, record)
		require.NoError(t, err)
		require.True(t, created)
	}
	require.NoError(t, conn.Create(&models.CartItem{
		CartID:           staleFull.ID,
		ProductVariantID: variants[0].ID,
		Quantity:         1,
		UnitPriceCents:   1200,
		TotalCents:       1200,
	}).Error)
	require.NoError(t, conn.Model(&models.CartRecord{}).
		Where("id IN ?", []uuid.UUID{staleEmpty.ID, staleFull.ID}).
		UpdateColumn("updated_at", longAgo).Error)

	job, err := NewEmptyCartJob(EmptyCartJobParams{Logger: logger.Nop(), Repository: repo})
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx))

	var ids []uuid.UUID
	require.NoError(t, conn.Model(&models.CartRecord{}).Pluck("id", &ids).Error)
	require.ElementsMatch(t, []uuid.UUID{staleFull.ID, freshEmpty.ID}, ids)
}

func TestJobConstructorsValidate(t *testing.T) {
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{})
	require.Error(t, err)
	_, err = NewEmptyCartJob(EmptyCartJobParams{Logger: logger.Nop()})
	require.Error(t, err)
}

func outboxRow(publishedAt *time.Time) *models.OutboxEvent {
	return &models.OutboxEvent{
		EventType:     enums.EventWishlistItemAdded,
		AggregateType: enums.AggregateWishlist,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		PublishedAt:   publishedAt,
	}
}
