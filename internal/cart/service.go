package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/internal/products"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the shopper's cart.
type Service interface {
	Current(ctx context.Context, userID uuid.UUID, channel string) (*models.CartRecord, error)
	AddVariant(ctx context.Context, input AddVariantInput) (*models.CartRecord, error)
	AddVariantTx(ctx context.Context, tx *gorm.DB, input AddVariantInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, channel string, itemID uuid.UUID) (*models.CartRecord, error)
	Summary(ctx context.Context, userID uuid.UUID, channel string) (*SummaryDTO, error)
}

// AddVariantInput describes one add-to-cart request.
type AddVariantInput struct {
	UserID    uuid.UUID
	Channel   string
	VariantID uuid.UUID
	Quantity  int
	// LockedUnitPriceCents pins the unit price of the resulting line and marks it immutable.
	LockedUnitPriceCents *int
}

type service struct {
	repo     *Repository
	catalog  *products.Repository
	tx       txRunner
	currency enums.Currency
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Repo     *Repository
	Catalog  *products.Repository
	Tx       txRunner
	Currency enums.Currency
	Logger   *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("unsupported currency %q", currency)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     params.Repo,
		catalog:  params.Catalog,
		tx:       params.Tx,
		currency: currency,
		logg:     logg,
	}, nil
}

// Current returns the user's active cart in channel, creating it on first use.
func (s *service) Current(ctx context.Context, userID uuid.UUID, channel string) (*models.CartRecord, error) {
	return s.current(ctx, s.repo, userID, channel)
}

func (s *service) current(ctx context.Context, repo *Repository, userID uuid.UUID, channel string) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "channel is required")
	}

	record, err := repo.FindActiveByUser(ctx, userID, channel)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	record = &models.CartRecord{
		UserID:      userID,
		ChannelCode: channel,
		Currency:    s.currency,
		Status:      enums.CartStatusCart,
	}
	created, err := repo.Create(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	if created {
		return record, nil
	}
	// another request created the active cart first
	record, err = repo.FindActiveByUser(ctx, userID, channel)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

// locked returns the active cart with its row locked for the rest of the
// transaction, creating it first when missing.
func (s *service) locked(ctx context.Context, repo *Repository, userID uuid.UUID, channel string) (*models.CartRecord, error) {
	if _, err := s.current(ctx, repo, userID, channel); err != nil {
		return nil, err
	}
	record, err := repo.LockActiveByUser(ctx, userID, strings.TrimSpace(channel))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}
	return record, nil
}

// AddVariant adds quantity of a variant to the user's cart in its own transaction.
func (s *service) AddVariant(ctx context.Context, input AddVariantInput) (*models.CartRecord, error) {
	var record *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		record, err = s.AddVariantTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// AddVariantTx merges the variant into an equal line or appends a new one,
// applies the optional price lock, re-prices the cart and saves it.
func (s *service) AddVariantTx(ctx context.Context, tx *gorm.DB, input AddVariantInput) (*models.CartRecord, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.LockedUnitPriceCents != nil && *input.LockedUnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "locked price must not be negative")
	}

	repo := s.repo.WithTx(tx)
	catalog := s.catalog.WithTx(tx)

	record, err := s.locked(ctx, repo, input.UserID, input.Channel)
	if err != nil {
		return nil, err
	}

	variant, err := catalog.FindVariantByID(ctx, input.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product variant")
	}
	if !variant.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product variant is not available")
	}

	line := record.ItemForVariant(variant.ID)
	if line == nil {
		record.Items = append(record.Items, models.CartItem{
			CartID:           record.ID,
			ProductVariantID: variant.ID,
			ProductVariant:   variant,
		})
		line = &record.Items[len(record.Items)-1]
	}
	line.Quantity += input.Quantity

	if input.LockedUnitPriceCents != nil {
		line.UnitPriceCents = *input.LockedUnitPriceCents
		line.Immutable = true
	}

	if err := process(ctx, record, products.NewPriceCalculator(catalog)); err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"cart_id":    record.ID.String(),
		"variant_id": variant.ID.String(),
		"quantity":   line.Quantity,
		"immutable":  line.Immutable,
	})
	s.logg.Info(logCtx, "cart line updated")
	return record, nil
}

// RemoveItem drops one line of the user's active cart and re-prices the rest.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, channel string, itemID uuid.UUID) (*models.CartRecord, error) {
	var record *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		record, err = s.locked(ctx, repo, userID, channel)
		if err != nil {
			return err
		}

		index := -1
		for i := range record.Items {
			if record.Items[i].ID == itemID {
				index = i
				break
			}
		}
		if index < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		if err := repo.DeleteItem(ctx, record.ID, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		record.Items = append(record.Items[:index], record.Items[index+1:]...)

		if err := process(ctx, record, products.NewPriceCalculator(s.catalog.WithTx(tx))); err != nil {
			return err
		}
		if err := repo.Save(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"cart_id":      record.ID.String(),
		"cart_item_id": itemID.String(),
	})
	s.logg.Info(logCtx, "cart line removed")
	return record, nil
}

type priceCalculator interface {
	Calculate(ctx context.Context, variant *models.ProductVariant, channel string) (int, error)
}

// process re-prices mutable lines and recomputes totals.
func process(ctx context.Context, record *models.CartRecord, calc priceCalculator) error {
	itemsTotal := 0
	for i := range record.Items {
		item := &record.Items[i]
		if !item.Immutable {
			variant := item.ProductVariant
			if variant == nil {
				variant = &models.ProductVariant{ID: item.ProductVariantID}
			}
			price, err := calc.Calculate(ctx, variant, record.ChannelCode)
			if err != nil {
				return err
			}
			item.UnitPriceCents = price
		}
		item.TotalCents = money.Multiply(item.UnitPriceCents, item.Quantity)
		itemsTotal += item.TotalCents
	}
	record.ItemsTotalCents = itemsTotal
	record.TotalCents = itemsTotal
	return nil
}

// Summary returns the user's current cart as a DTO.
func (s *service) Summary(ctx context.Context, userID uuid.UUID, channel string) (*SummaryDTO, error) {
	record, err := s.Current(ctx, userID, channel)
	if err != nil {
		return nil, err
	}
	return FromModel(record), nil
}
