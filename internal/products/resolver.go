package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
)

// VariantQuery identifies a variant through its product instead of its id.
type VariantQuery struct {
	ProductID   uuid.UUID
	VariantCode string
	Options     map[string]string
}

type variantLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariantByCode(ctx context.Context, productID uuid.UUID, code string) (*models.ProductVariant, error)
	ListEnabledVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error)
}

// VariantResolver picks the variant a shopper meant when they only named the product.
type VariantResolver struct {
	variants variantLoader
}

func NewVariantResolver(loader variantLoader) *VariantResolver {
	return &VariantResolver{variants: loader}
}

// Resolve tries the variant code, then an exact option match, then falls back
// to the first enabled variant by position.
func (r *VariantResolver) Resolve(ctx context.Context, query VariantQuery) (*models.ProductVariant, error) {
	if query.ProductID == uuid.Nil {
		return nil, errVariantNotResolved
	}
	if _, err := r.variants.FindProductByID(ctx, query.ProductID); err != nil {
		return nil, lookupErr(err)
	}

	if code := strings.TrimSpace(query.VariantCode); code != "" {
		variant, err := r.variants.FindVariantByCode(ctx, query.ProductID, code)
		if err != nil {
			return nil, lookupErr(err)
		}
		return variant, nil
	}

	enabled, err := r.variants.ListEnabledVariants(ctx, query.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variants")
	}

	if len(query.Options) > 0 {
		for i := range enabled {
			if enabled[i].MatchesOptions(query.Options) {
				return &enabled[i], nil
			}
		}
		return nil, errVariantNotResolved
	}

	if len(enabled) == 0 {
		return nil, errVariantNotResolved
	}
	return &enabled[0], nil
}

var errVariantNotResolved = pkgerrors.New(pkgerrors.CodeValidation, "product variant could not be resolved")

func lookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errVariantNotResolved
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product variant")
}
