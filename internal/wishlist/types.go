package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/wishlist-backend/internal/products"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	"github.com/angelmondragon/wishlist-backend/pkg/money"
)

// AddItemInput carries an add-to-wishlist request. Either VariantID or
// Variant.ProductID must be set.
type AddItemInput struct {
	UserID     uuid.UUID
	WishlistID *uuid.UUID
	VariantID  *uuid.UUID
	Variant    products.VariantQuery
	Channel    string
}

// AddItemResult reports where the variant landed. Duplicate is true when the
// wishlist already held it and nothing was written.
type AddItemResult struct {
	Wishlist  *models.Wishlist
	Item      *models.WishlistItem
	Duplicate bool
}

// WishlistDTO is the list representation of a wishlist.
type WishlistDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	ItemCount int64     `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// NewWishlistDTO renders a freshly loaded wishlist; the item count comes
// from the preloaded items.
func NewWishlistDTO(w *models.Wishlist) WishlistDTO {
	return WishlistDTO{
		ID:        w.ID,
		Title:     w.Title,
		Slug:      w.Slug,
		ItemCount: int64(len(w.Items)),
		CreatedAt: w.CreatedAt,
	}
}

// WishlistDetailDTO is one wishlist with a page of its items.
type WishlistDetailDTO struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemDTO is a wishlist item as rendered to shoppers.
type ItemDTO struct {
	ID               uuid.UUID     `json:"id"`
	ProductVariantID uuid.UUID     `json:"product_variant_id"`
	VariantCode      string        `json:"variant_code,omitempty"`
	VariantName      string        `json:"variant_name,omitempty"`
	LockedPrice      *money.Amount `json:"locked_price,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

func toItemDTO(item models.WishlistItem, currency enums.Currency) ItemDTO {
	dto := ItemDTO{
		ID:               item.ID,
		ProductVariantID: item.ProductVariantID,
		CreatedAt:        item.CreatedAt,
	}
	if item.ProductVariant != nil {
		dto.VariantCode = item.ProductVariant.Code
		dto.VariantName = item.ProductVariant.Name
	}
	if item.PriceCents != nil {
		amount := money.FromCents(*item.PriceCents, currency)
		dto.LockedPrice = &amount
	}
	return dto
}
