package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product groups sellable variants.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code      string           `gorm:"column:code;not null;uniqueIndex:products_code_key"`
	Name      string           `gorm:"column:name;not null"`
	Enabled   bool             `gorm:"column:enabled;not null;default:true"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ProductVariant is the unit a shopper puts on a wishlist or in a cart.
type ProductVariant struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index:product_variants_product_id_idx"`
	Product         *Product          `gorm:"foreignKey:ProductID"`
	Code            string            `gorm:"column:code;not null;uniqueIndex:product_variants_code_key"`
	Name            string            `gorm:"column:name;not null"`
	OptionValues    map[string]string `gorm:"column:option_values;type:jsonb;serializer:json"`
	Enabled         bool              `gorm:"column:enabled;not null;default:true"`
	Position        int               `gorm:"column:position;not null;default:0"`
	ChannelPricings []ChannelPricing  `gorm:"foreignKey:ProductVariantID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// MatchesOptions reports whether every requested option code carries the requested value.
func (v ProductVariant) MatchesOptions(options map[string]string) bool {
	if len(options) == 0 {
		return false
	}
	for code, value := range options {
		if v.OptionValues[code] != value {
			return false
		}
	}
	return true
}

// ChannelPricing is a variant's price in one sales channel.
type ChannelPricing struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductVariantID   uuid.UUID `gorm:"column:product_variant_id;type:uuid;not null;uniqueIndex:channel_pricings_variant_channel_key"`
	ChannelCode        string    `gorm:"column:channel_code;not null;uniqueIndex:channel_pricings_variant_channel_key"`
	PriceCents         int       `gorm:"column:price_cents;not null"`
	OriginalPriceCents *int      `gorm:"column:original_price_cents"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *ChannelPricing) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
