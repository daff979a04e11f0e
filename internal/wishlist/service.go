package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/internal/cart"
	"github.com/angelmondragon/wishlist-backend/internal/products"
	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/angelmondragon/wishlist-backend/pkg/db"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/metrics"
	"github.com/angelmondragon/wishlist-backend/pkg/outbox"
	"github.com/angelmondragon/wishlist-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/wishlist-backend/pkg/pagination"
)

const (
	itemUniqueConstraint = "wishlist_items_wishlist_variant_key"
	maxSlugAttempts      = 5
)

var errConcurrentDuplicate = errors.New("variant added concurrently")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAdder interface {
	AddVariantTx(ctx context.Context, tx *gorm.DB, input cart.AddVariantInput) (*models.CartRecord, error)
}

// Service exposes the shopper-facing wishlist operations.
type Service interface {
	AddItem(ctx context.Context, input AddItemInput) (*AddItemResult, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Wishlist, error)
	AddItemToCart(ctx context.Context, userID, itemID uuid.UUID, channel string) (*models.CartRecord, error)
	Create(ctx context.Context, userID uuid.UUID, title string) (*models.Wishlist, error)
	List(ctx context.Context, userID uuid.UUID) ([]WishlistDTO, error)
	First(ctx context.Context, userID uuid.UUID, params pagination.Params) (*WishlistDetailDTO, error)
	ShowBySlug(ctx context.Context, userID uuid.UUID, slug string, params pagination.Params) (*WishlistDetailDTO, error)
}

// ServiceParams bundles the dependencies required to build a wishlist service.
type ServiceParams struct {
	Repo    *Repository
	Catalog *products.Repository
	Cart    cartAdder
	Outbox  outbox.Emitter
	Tx      txRunner
	Factory *Factory
	Metrics *metrics.WishlistMetrics
	Config  config.WishlistConfig
	Logger  *logger.Logger
}

type service struct {
	repo     *Repository
	catalog  *products.Repository
	cart     cartAdder
	outbox   outbox.Emitter
	tx       txRunner
	factory  *Factory
	metrics  *metrics.WishlistMetrics
	cfg      config.WishlistConfig
	currency enums.Currency
	logg     *logger.Logger
}

// NewService constructs the wishlist service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	factory := params.Factory
	if factory == nil {
		factory = NewFactory(params.Config.DefaultTitle)
	}
	currency := enums.Currency(strings.ToUpper(strings.TrimSpace(params.Config.DefaultCurrency)))
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     params.Repo,
		catalog:  params.Catalog,
		cart:     params.Cart,
		outbox:   params.Outbox,
		tx:       params.Tx,
		factory:  factory,
		metrics:  params.Metrics,
		cfg:      params.Config,
		currency: currency,
		logg:     logg,
	}, nil
}

// AddItem puts a variant on the requested (or first, or a new default)
// wishlist of the user. A variant already on the wishlist is reported as a
// duplicate and not written again.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (*AddItemResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an authenticated user is required")
	}
	channel := s.channelOr(input.Channel)

	var result *AddItemResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalog := s.catalog.WithTx(tx)

		wishlist, err := s.resolveWishlist(ctx, tx, repo, input)
		if err != nil {
			return err
		}
		variant, err := resolveVariant(ctx, catalog, input)
		if err != nil {
			return err
		}

		exists, err := repo.ContainsVariant(ctx, wishlist.ID, variant.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wishlist contents")
		}
		if exists {
			result = &AddItemResult{Wishlist: wishlist, Duplicate: true}
			return nil
		}

		item := &models.WishlistItem{WishlistID: wishlist.ID, ProductVariantID: variant.ID}
		if s.cfg.PriceLock {
			price, err := products.NewPriceCalculator(catalog).Calculate(ctx, variant, channel)
			if err != nil {
				return err
			}
			item.PriceCents = &price
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			if db.IsUniqueViolation(err, itemUniqueConstraint) {
				return errConcurrentDuplicate
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wishlist item")
		}
		item.Wishlist = wishlist
		item.ProductVariant = variant

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWishlistItemAdded,
			AggregateType: enums.AggregateWishlist,
			AggregateID:   wishlist.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID},
			Data: payloads.WishlistItemAddedEvent{
				WishlistID:       wishlist.ID,
				WishlistItemID:   item.ID,
				UserID:           input.UserID,
				ProductVariantID: variant.ID,
				ChannelCode:      channel,
				LockedPriceCents: item.PriceCents,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit wishlist item added")
		}

		result = &AddItemResult{Wishlist: wishlist, Item: item}
		return nil
	})

	if errors.Is(err, errConcurrentDuplicate) {
		wishlist, lookupErr := s.reloadTarget(ctx, input)
		if lookupErr != nil {
			return nil, lookupErr
		}
		result, err = &AddItemResult{Wishlist: wishlist, Duplicate: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if result.Duplicate {
		s.metrics.IncAdded(metrics.AddResultDuplicate)
	} else {
		s.metrics.IncAdded(metrics.AddResultAdded)
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"wishlist_id":      result.Wishlist.ID.String(),
			"wishlist_item_id": result.Item.ID.String(),
			"price_locked":     result.Item.PriceCents != nil,
		})
		s.logg.Info(logCtx, "wishlist item added")
	}
	return result, nil
}

func (s *service) resolveWishlist(ctx context.Context, tx *gorm.DB, repo *Repository, input AddItemInput) (*models.Wishlist, error) {
	if input.WishlistID != nil && *input.WishlistID != uuid.Nil {
		wishlist, err := repo.FindByIDAndUser(ctx, *input.WishlistID, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
		}
		return wishlist, nil
	}

	if err := lockOwner(ctx, repo, input.UserID); err != nil {
		return nil, err
	}
	wishlist, err := repo.FirstForUser(ctx, input.UserID)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load first wishlist")
	}

	wishlist = s.factory.CreateDefault(input.UserID)
	if err := s.insertWishlist(ctx, tx, repo, wishlist); err != nil {
		return nil, err
	}
	return wishlist, nil
}

func lockOwner(ctx context.Context, repo *Repository, userID uuid.UUID) error {
	if err := repo.LockOwner(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wishlist owner")
	}
	return nil
}

func resolveVariant(ctx context.Context, catalog *products.Repository, input AddItemInput) (*models.ProductVariant, error) {
	if input.VariantID != nil && *input.VariantID != uuid.Nil {
		variant, err := catalog.FindVariantByID(ctx, *input.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "product variant not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product variant")
		}
		return variant, nil
	}
	return products.NewVariantResolver(catalog).Resolve(ctx, input.Variant)
}

func (s *service) reloadTarget(ctx context.Context, input AddItemInput) (*models.Wishlist, error) {
	var (
		wishlist *models.Wishlist
		err      error
	)
	if input.WishlistID != nil && *input.WishlistID != uuid.Nil {
		wishlist, err = s.repo.FindByIDAndUser(ctx, *input.WishlistID, input.UserID)
	} else {
		wishlist, err = s.repo.FirstForUser(ctx, input.UserID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload wishlist")
	}
	return wishlist, nil
}

// insertWishlist stores a new wishlist, re-rolling the slug suffix on collision,
// and queues its created event.
func (s *service) insertWishlist(ctx context.Context, tx *gorm.DB, repo *Repository, wishlist *models.Wishlist) error {
	for attempt := 0; ; attempt++ {
		taken, err := repo.SlugExists(ctx, wishlist.Slug)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wishlist slug")
		}
		if !taken {
			break
		}
		if attempt >= maxSlugAttempts {
			return pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique wishlist slug")
		}
		s.factory.Reslug(wishlist)
	}

	if err := repo.Create(ctx, wishlist); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wishlist")
	}

	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventWishlistCreated,
		AggregateType: enums.AggregateWishlist,
		AggregateID:   wishlist.ID,
		Actor:         &outbox.ActorRef{UserID: wishlist.UserID},
		Data: payloads.WishlistCreatedEvent{
			WishlistID: wishlist.ID,
			UserID:     wishlist.UserID,
			Title:      wishlist.Title,
			Slug:       wishlist.Slug,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit wishlist created")
	}
	return nil
}

// loadOwnedItem returns the item when userID owns its wishlist. Anonymous
// users never own anything.
func loadOwnedItem(ctx context.Context, repo *Repository, userID, itemID uuid.UUID) (*models.WishlistItem, error) {
	item, err := repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wishlist item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist item")
	}
	if userID == uuid.Nil || item.Wishlist == nil || item.Wishlist.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "wishlist item belongs to another user")
	}
	return item, nil
}

// RemoveItem deletes an item the user owns and returns its wishlist.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Wishlist, error) {
	var wishlist *models.Wishlist
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := loadOwnedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wishlist item")
		}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWishlistItemRemoved,
			AggregateType: enums.AggregateWishlist,
			AggregateID:   item.WishlistID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.WishlistItemRemovedEvent{
				WishlistID:       item.WishlistID,
				WishlistItemID:   item.ID,
				UserID:           userID,
				ProductVariantID: item.ProductVariantID,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit wishlist item removed")
		}
		wishlist = item.Wishlist
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncRemoved()
	return wishlist, nil
}

// AddItemToCart adds one unit of the item's variant to the user's cart. With
// price lock enabled and a stored price, the cart line takes that price and
// becomes immutable. The wishlist item itself stays in place.
func (s *service) AddItemToCart(ctx context.Context, userID, itemID uuid.UUID, channel string) (*models.CartRecord, error) {
	channel = s.channelOr(channel)

	var (
		record *models.CartRecord
		locked bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := loadOwnedItem(ctx, s.repo.WithTx(tx), userID, itemID)
		if err != nil {
			return err
		}

		input := cart.AddVariantInput{
			UserID:    userID,
			Channel:   channel,
			VariantID: item.ProductVariantID,
			Quantity:  1,
		}
		if s.cfg.PriceLock && item.PriceCents != nil {
			price := *item.PriceCents
			input.LockedUnitPriceCents = &price
			locked = true
		}

		record, err = s.cart.AddVariantTx(ctx, tx, input)
		if err != nil {
			return err
		}

		unitPrice := 0
		if line := record.ItemForVariant(item.ProductVariantID); line != nil {
			unitPrice = line.UnitPriceCents
		}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWishlistItemMovedToCart,
			AggregateType: enums.AggregateWishlist,
			AggregateID:   item.WishlistID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.WishlistItemMovedToCartEvent{
				WishlistID:       item.WishlistID,
				WishlistItemID:   item.ID,
				UserID:           userID,
				CartID:           record.ID,
				ProductVariantID: item.ProductVariantID,
				UnitPriceCents:   unitPrice,
				PriceLocked:      locked,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit wishlist item moved to cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncMovedToCart(locked)
	return record, nil
}

// Create adds a named wishlist. Without multiple wishlists enabled a user may
// only own one.
func (s *service) Create(ctx context.Context, userID uuid.UUID, title string) (*models.Wishlist, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	wishlist, err := s.factory.CreateNamed(userID, title)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := lockOwner(ctx, repo, userID); err != nil {
			return err
		}
		if !s.cfg.Multiple {
			count, err := repo.CountForUser(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count wishlists")
			}
			if count > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "multiple wishlists are disabled")
			}
		}
		return s.insertWishlist(ctx, tx, repo, wishlist)
	})
	if err != nil {
		return nil, err
	}
	return wishlist, nil
}

// List returns the user's wishlists with item counts.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]WishlistDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlists")
	}
	out := make([]WishlistDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, WishlistDTO{
			ID:        row.ID,
			Title:     row.Title,
			Slug:      row.Slug,
			ItemCount: row.ItemCount,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// First shows the user's oldest wishlist.
func (s *service) First(ctx context.Context, userID uuid.UUID, params pagination.Params) (*WishlistDetailDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	wishlist, err := s.repo.FirstForUser(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "wishlist not found", "load first wishlist")
	}
	return s.detail(ctx, wishlist, params)
}

// ShowBySlug shows one of the user's wishlists.
func (s *service) ShowBySlug(ctx context.Context, userID uuid.UUID, slug string, params pagination.Params) (*WishlistDetailDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	wishlist, err := s.repo.FindBySlugAndUser(ctx, slug, userID)
	if err != nil {
		return nil, notFoundOr(err, "wishlist not found", "load wishlist")
	}
	return s.detail(ctx, wishlist, params)
}

func (s *service) detail(ctx context.Context, wishlist *models.Wishlist, params pagination.Params) (*WishlistDetailDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.ListItems(ctx, wishlist.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist items")
	}
	items := make([]ItemDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, toItemDTO(item, s.currency))
	}
	return &WishlistDetailDTO{
		ID:         wishlist.ID,
		Title:      wishlist.Title,
		Slug:       wishlist.Slug,
		Items:      items,
		NextCursor: page.NextCursor,
		CreatedAt:  wishlist.CreatedAt,
	}, nil
}

func (s *service) channelOr(channel string) string {
	if channel = strings.TrimSpace(channel); channel != "" {
		return channel
	}
	return s.cfg.DefaultChannel
}

func notFoundOr(err error, notFound, dependency string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, dependency)
}
