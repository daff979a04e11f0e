package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem links a wishlist to a liked variant. PriceCents is only set
// when the price was locked at the time the item was added.
type WishlistItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	WishlistID       uuid.UUID       `gorm:"column:wishlist_id;type:uuid;not null;index:wishlist_items_wishlist_id_idx;uniqueIndex:wishlist_items_wishlist_variant_key"`
	Wishlist         *Wishlist       `gorm:"foreignKey:WishlistID"`
	ProductVariantID uuid.UUID       `gorm:"column:product_variant_id;type:uuid;not null;uniqueIndex:wishlist_items_wishlist_variant_key"`
	ProductVariant   *ProductVariant `gorm:"foreignKey:ProductVariantID"`
	PriceCents       *int            `gorm:"column:price_cents"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *WishlistItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
