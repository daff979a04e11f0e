package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	"github.com/angelmondragon/wishlist-backend/pkg/money"
)

// SummaryDTO is the cart summary rendered at GET /cart.
type SummaryDTO struct {
	ID          uuid.UUID        `json:"id"`
	ChannelCode string           `json:"channel_code"`
	Currency    enums.Currency   `json:"currency"`
	Status      enums.CartStatus `json:"status"`
	Items       []ItemDTO        `json:"items"`
	ItemsTotal  money.Amount     `json:"items_total"`
	Total       money.Amount     `json:"total"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type ItemDTO struct {
	ID               uuid.UUID    `json:"id"`
	ProductVariantID uuid.UUID    `json:"product_variant_id"`
	VariantCode      string       `json:"variant_code,omitempty"`
	VariantName      string       `json:"variant_name,omitempty"`
	Quantity         int          `json:"quantity"`
	UnitPrice        money.Amount `json:"unit_price"`
	Total            money.Amount `json:"total"`
	Immutable        bool         `json:"immutable"`
}

// FromModel maps a cart record into its summary.
func FromModel(record *models.CartRecord) *SummaryDTO {
	if record == nil {
		return nil
	}
	items := make([]ItemDTO, 0, len(record.Items))
	for _, item := range record.Items {
		dto := ItemDTO{
			ID:               item.ID,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			UnitPrice:        money.FromCents(item.UnitPriceCents, record.Currency),
			Total:            money.FromCents(item.TotalCents, record.Currency),
			Immutable:        item.Immutable,
		}
		if item.ProductVariant != nil {
			dto.VariantCode = item.ProductVariant.Code
			dto.VariantName = item.ProductVariant.Name
		}
		items = append(items, dto)
	}
	return &SummaryDTO{
		ID:          record.ID,
		ChannelCode: record.ChannelCode,
		Currency:    record.Currency,
		Status:      record.Status,
		Items:       items,
		ItemsTotal:  money.FromCents(record.ItemsTotalCents, record.Currency),
		Total:       money.FromCents(record.TotalCents, record.Currency),
		UpdatedAt:   record.UpdatedAt,
	}
}
