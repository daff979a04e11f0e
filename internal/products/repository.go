package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/internal/repo"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
)

// Repository reads catalog data needed by wishlists and carts.
type Repository struct {
	repo.Base
}

// NewRepository binds the catalog repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Tx(tx)}
}

// FindProductByID loads a product without its variants.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariantByID loads a variant together with its product.
func (r *Repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.DB(ctx).
		Preload("Product").
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindVariantByCode loads the variant of productID carrying code.
func (r *Repository) FindVariantByCode(ctx context.Context, productID uuid.UUID, code string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.DB(ctx).
		Preload("Product").
		Where("product_id = ? AND code = ?", productID, strings.TrimSpace(code)).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListEnabledVariants returns the product's enabled variants ordered by position.
func (r *Repository) ListEnabledVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.DB(ctx).
		Preload("Product").
		Where("product_id = ? AND enabled = ?", productID, true).
		Order("position ASC").
		Order("code ASC").
		Find(&variants).Error
	return variants, err
}

// FindChannelPricing returns the variant's price row for channel.
func (r *Repository) FindChannelPricing(ctx context.Context, variantID uuid.UUID, channel string) (*models.ChannelPricing, error) {
	var pricing models.ChannelPricing
	err := r.DB(ctx).
		Where("product_variant_id = ? AND channel_code = ?", variantID, channel).
		First(&pricing).Error
	if err != nil {
		return nil, err
	}
	return &pricing, nil
}
