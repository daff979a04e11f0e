package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/pkg/enums"
)

// CartRecord is an order still in the cart state for one user and channel.
type CartRecord struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index:carts_user_id_idx"`
	ChannelCode     string           `gorm:"column:channel_code;not null"`
	Currency        enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status          enums.CartStatus `gorm:"column:status;type:text;not null;default:'cart'"`
	ItemsTotalCents int              `gorm:"column:items_total_cents;not null;default:0"`
	TotalCents      int              `gorm:"column:total_cents;not null;default:0"`
	Items           []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartRecord) TableName() string {
	return "carts"
}

func (c *CartRecord) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// ItemForVariant returns the cart line holding variantID, if any.
func (c *CartRecord) ItemForVariant(variantID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductVariantID == variantID {
			return &c.Items[i]
		}
	}
	return nil
}
