package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wishlist-backend/internal/repo"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
)

// Repository encapsulates cart record and cart item persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Tx(tx)}
}

// FindActiveByUser returns the latest cart-state order of the user in channel.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID, channel string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Items.ProductVariant").
		Where("user_id = ? AND channel_code = ? AND status = ?", userID, channel, enums.CartStatusCart).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// LockActiveByUser loads the active cart like FindActiveByUser after taking
// a row lock on postgres, so concurrent writers of one cart queue up.
func (r *Repository) LockActiveByUser(ctx context.Context, userID uuid.UUID, channel string) (*models.CartRecord, error) {
	db := r.DB(ctx)
	var locked models.CartRecord
	query := db.Select("id").
		Where("user_id = ? AND channel_code = ? AND status = ?", userID, channel, enums.CartStatusCart)
	if db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Take(&locked).Error; err != nil {
		return nil, err
	}
	return r.FindActiveByUser(ctx, userID, channel)
}

// Create inserts an empty cart. It reports false when the user already has
// an active cart in the channel.
func (r *Repository) Create(ctx context.Context, record *models.CartRecord) (bool, error) {
	if record.Status == "" {
		record.Status = enums.CartStatusCart
	}
	res := r.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Save persists the cart totals and upserts every line.
func (r *Repository) Save(ctx context.Context, record *models.CartRecord) error {
	if err := r.DB(ctx).Omit(clause.Associations).Save(record).Error; err != nil {
		return err
	}
	for i := range record.Items {
		item := &record.Items[i]
		item.CartID = record.ID
		if item.ID == uuid.Nil {
			if err := r.DB(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
				return err
			}
			continue
		}
		if err := r.DB(ctx).Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteItem removes one line from the cart.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.DB(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&models.CartItem{}).Error
}

// DeleteEmptyBefore drops carts in the cart state that have no lines and
// were last touched before cutoff.
func (r *Repository) DeleteEmptyBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Where("status = ? AND updated_at < ?", enums.CartStatusCart, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id)").
		Delete(&models.CartRecord{})
	return res.RowsAffected, res.Error
}
