package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/internal/products"
	"github.com/angelmondragon/wishlist-backend/pkg/db/dbtest"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
)

const channel = "default"

type fixture struct {
	conn     *gorm.DB
	svc      Service
	user     *models.User
	variants []models.ProductVariant
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Catalog:  products.NewRepository(conn),
		Tx:       client,
		Currency: enums.CurrencyEUR,
	})
	require.NoError(t, err)

	_, variants := dbtest.MustCreateProduct(t, conn, "mug",
		dbtest.VariantFixture{Code: "mug-white", Prices: map[string]int{channel: 1200}},
		dbtest.VariantFixture{Code: "mug-black", Position: 1, Prices: map[string]int{channel: 1500}},
		dbtest.VariantFixture{Code: "mug-retired", Position: 2, Disabled: true, Prices: map[string]int{channel: 900}},
		dbtest.VariantFixture{Code: "mug-unpriced", Position: 3},
	)
	return fixture{conn: conn, svc: svc, user: dbtest.MustCreateUser(t, conn), variants: variants}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	conn := dbtest.Open(t)
	_, err = NewService(ServiceParams{Repo: NewRepository(conn), Catalog: products.NewRepository(conn), Tx: stubTx{}, Currency: "JPY"})
	require.Error(t, err)
}

func TestCurrentCreatesCartLazily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Current(ctx, f.user.ID, channel)
	require.NoError(t, err)
	require.Equal(t, enums.CartStatusCart, first.Status)
	require.Equal(t, enums.CurrencyEUR, first.Currency)

	second, err := f.svc.Current(ctx, f.user.ID, channel)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	_, err = f.svc.Current(ctx, uuid.Nil, channel)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestAddVariantMergesEqualLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[0].ID, Quantity: 1})
	require.NoError(t, err)
	record, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[0].ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, record.Items, 1)
	require.Equal(t, 3, record.Items[0].Quantity)
	require.Equal(t, 1200, record.Items[0].UnitPriceCents)
	require.Equal(t, 3600, record.TotalCents)

	var count int64
	require.NoError(t, f.conn.Model(&models.CartItem{}).Where("cart_id = ?", record.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAddVariantPriceLockMarksLineImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	locked := 999
	_, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[0].ID, Quantity: 1, LockedUnitPriceCents: &locked})
	require.NoError(t, err)

	dbtest.MustSetPrice(t, f.conn, f.variants[0].ID, channel, 5000)
	dbtest.MustSetPrice(t, f.conn, f.variants[1].ID, channel, 1700)

	record, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[1].ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, record.Items, 2)

	lockedLine := record.ItemForVariant(f.variants[0].ID)
	require.NotNil(t, lockedLine)
	require.True(t, lockedLine.Immutable)
	require.Equal(t, 999, lockedLine.UnitPriceCents, "immutable lines keep their price")

	mutableLine := record.ItemForVariant(f.variants[1].ID)
	require.False(t, mutableLine.Immutable)
	require.Equal(t, 1700, mutableLine.UnitPriceCents)
	require.Equal(t, 999+1700, record.TotalCents)

	var stored models.CartItem
	require.NoError(t, f.conn.First(&stored, "id = ?", lockedLine.ID).Error)
	require.True(t, stored.Immutable)
	require.Equal(t, 999, stored.UnitPriceCents)
}

func TestAddVariantRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]AddVariantInput{
		"zero quantity":    {UserID: f.user.ID, Channel: channel, VariantID: f.variants[0].ID},
		"unknown variant":  {UserID: f.user.ID, Channel: channel, VariantID: uuid.New(), Quantity: 1},
		"disabled variant": {UserID: f.user.ID, Channel: channel, VariantID: f.variants[2].ID, Quantity: 1},
		"missing pricing":  {UserID: f.user.ID, Channel: channel, VariantID: f.variants[3].ID, Quantity: 1},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.AddVariant(ctx, input)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, f.conn.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count, "failed adds roll back")
}

func TestSummaryFormatsMoney(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[1].ID, Quantity: 2})
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, f.user.ID, channel)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	require.Equal(t, "mug-black", summary.Items[0].VariantCode)
	require.Equal(t, "15.00", summary.Items[0].UnitPrice.Amount)
	require.Equal(t, "30.00", summary.Total.Amount)
	require.Equal(t, enums.CurrencyEUR, summary.Total.Currency)
}

func TestRepositoryDeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[0].ID, Quantity: 1})
	require.NoError(t, err)

	repo := NewRepository(f.conn)
	require.NoError(t, repo.DeleteItem(ctx, record.ID, record.Items[0].ID))

	reloaded, err := repo.FindActiveByUser(ctx, f.user.ID, channel)
	require.NoError(t, err)
	require.Empty(t, reloaded.Items)
}

func TestRepositoryCreateKeepsOneActiveCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewRepository(f.conn)

	first := &models.CartRecord{UserID: f.user.ID, ChannelCode: channel, Currency: enums.CurrencyEUR}
	created, err := repo.Create(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	racing := &models.CartRecord{UserID: f.user.ID, ChannelCode: channel, Currency: enums.CurrencyEUR}
	created, err = repo.Create(ctx, racing)
	require.NoError(t, err)
	require.False(t, created)

	other := &models.CartRecord{UserID: f.user.ID, ChannelCode: "mobile", Currency: enums.CurrencyEUR}
	created, err = repo.Create(ctx, other)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, f.conn.Model(&models.CartRecord{}).Where("id = ?", first.ID).
		UpdateColumn("status", enums.CartStatusCheckedOut).Error)
	current, err := f.svc.Current(ctx, f.user.ID, channel)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, current.ID)

	var active int64
	require.NoError(t, f.conn.Model(&models.CartRecord{}).
		Where("user_id = ? AND channel_code = ? AND status = ?", f.user.ID, channel, enums.CartStatusCart).
		Count(&active).Error)
	require.EqualValues(t, 1, active)
}

func TestRemoveItemRepricesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[0].ID, Quantity: 1})
	require.NoError(t, err)
	record, err := f.svc.AddVariant(ctx, AddVariantInput{UserID: f.user.ID, Channel: channel, VariantID: f.variants[1].ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, record.Items, 2)
	require.Equal(t, 4200, record.TotalCents)

	white := record.ItemForVariant(f.variants[0].ID)
	require.NotNil(t, white)

	other := dbtest.MustCreateUser(t, f.conn)
	_, err = f.svc.RemoveItem(ctx, other.ID, channel, white.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = f.svc.RemoveItem(ctx, f.user.ID, channel, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	updated, err := f.svc.RemoveItem(ctx, f.user.ID, channel, white.ID)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	require.Equal(t, 3000, updated.TotalCents)

	summary, err := f.svc.Summary(ctx, f.user.ID, channel)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	require.Equal(t, "mug-black", summary.Items[0].VariantCode)
	require.Equal(t, "30.00", summary.Total.Amount)
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
