package payloads

import (
	"github.com/google/uuid"
)

// WishlistItemAddedEvent is emitted when a variant lands on a wishlist.
type WishlistItemAddedEvent struct {
	WishlistID       uuid.UUID `json:"wishlist_id"`
	WishlistItemID   uuid.UUID `json:"wishlist_item_id"`
	UserID           uuid.UUID `json:"user_id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	ChannelCode      string    `json:"channel_code,omitempty"`
	LockedPriceCents *int      `json:"locked_price_cents,omitempty"`
}

// WishlistItemRemovedEvent is emitted when a shopper removes an item.
type WishlistItemRemovedEvent struct {
	WishlistID       uuid.UUID `json:"wishlist_id"`
	WishlistItemID   uuid.UUID `json:"wishlist_item_id"`
	UserID           uuid.UUID `json:"user_id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
}

// WishlistItemMovedToCartEvent is emitted when an item is copied into the cart.
type WishlistItemMovedToCartEvent struct {
	WishlistID       uuid.UUID `json:"wishlist_id"`
	WishlistItemID   uuid.UUID `json:"wishlist_item_id"`
	UserID           uuid.UUID `json:"user_id"`
	CartID           uuid.UUID `json:"cart_id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	UnitPriceCents   int       `json:"unit_price_cents"`
	PriceLocked      bool      `json:"price_locked"`
}

// WishlistCreatedEvent is emitted for every new wishlist, default or named.
type WishlistCreatedEvent struct {
	WishlistID uuid.UUID `json:"wishlist_id"`
	UserID     uuid.UUID `json:"user_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
}
