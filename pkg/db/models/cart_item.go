package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. Immutable lines keep their unit price when
// the cart is re-priced.
type CartItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID           uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:cart_items_cart_variant_key"`
	ProductVariantID uuid.UUID       `gorm:"column:product_variant_id;type:uuid;not null;uniqueIndex:cart_items_cart_variant_key"`
	ProductVariant   *ProductVariant `gorm:"foreignKey:ProductVariantID"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPriceCents   int             `gorm:"column:unit_price_cents;not null"`
	Immutable        bool            `gorm:"column:immutable;not null;default:false"`
	TotalCents       int             `gorm:"column:total_cents;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
