package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
)

type pricingLoader interface {
	FindChannelPricing(ctx context.Context, variantID uuid.UUID, channel string) (*models.ChannelPricing, error)
}

// PriceCalculator resolves a variant's unit price in a sales channel.
type PriceCalculator struct {
	pricing pricingLoader
}

// NewPriceCalculator builds a calculator reading channel pricings from loader.
func NewPriceCalculator(loader pricingLoader) *PriceCalculator {
	return &PriceCalculator{pricing: loader}
}

// Calculate returns the variant's price in cents for channel.
func (c *PriceCalculator) Calculate(ctx context.Context, variant *models.ProductVariant, channel string) (int, error) {
	if variant == nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "variant is required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "channel is required")
	}
	pricing, err := c.pricing.FindChannelPricing(ctx, variant.ID, channel)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant %s has no price in channel %s", variant.Code, channel))
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load channel pricing")
	}
	return pricing.PriceCents, nil
}
