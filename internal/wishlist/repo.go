package wishlist

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/wishlist-backend/internal/repo"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Tx(tx)}
}

// FindItemByID loads an item with its wishlist and variant.
func (r *Repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.DB(ctx).
		Preload("Wishlist").
		Preload("ProductVariant").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a wishlist item. Associations are never cascaded.
func (r *Repository) CreateItem(ctx context.Context, item *models.WishlistItem) error {
	return r.DB(ctx).Omit(clause.Associations).Create(item).Error
}

// DeleteItem removes the item row.
func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.WishlistItem{}).Error
}

// ContainsVariant reports whether the wishlist already holds the variant.
func (r *Repository) ContainsVariant(ctx context.Context, wishlistID, variantID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.WishlistItem{}).
		Where("wishlist_id = ? AND product_variant_id = ?", wishlistID, variantID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a wishlist.
func (r *Repository) Create(ctx context.Context, wishlist *models.Wishlist) error {
	return r.DB(ctx).Omit(clause.Associations).Create(wishlist).Error
}

// FindByIDAndUser returns the wishlist only when userID owns it.
func (r *Repository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.DB(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&wishlist).Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// FirstForUser returns the user's oldest wishlist.
func (r *Repository) FirstForUser(ctx context.Context, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		First(&wishlist).Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// FindBySlugAndUser returns the wishlist with slug owned by userID.
func (r *Repository) FindBySlugAndUser(ctx context.Context, slug string, userID uuid.UUID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	err := r.DB(ctx).
		Where("slug = ? AND user_id = ?", strings.TrimSpace(slug), userID).
		First(&wishlist).Error
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// WishlistWithCount is a wishlist row plus its item count.
type WishlistWithCount struct {
	models.Wishlist
	ItemCount int64 `gorm:"column:item_count"`
}

// ListForUser returns every wishlist of the user, oldest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]WishlistWithCount, error) {
	var rows []WishlistWithCount
	err := r.DB(ctx).
		Model(&models.Wishlist{}).
		Select("wishlists.*, (SELECT COUNT(*) FROM wishlist_items wi WHERE wi.wishlist_id = wishlists.id) AS item_count").
		Where("wishlists.user_id = ?", userID).
		Order("wishlists.created_at ASC").
		Order("wishlists.id ASC").
		Scan(&rows).Error
	return rows, err
}

// LockOwner takes a row lock on the owning user for the rest of the
// transaction so wishlist creation for one user is serialised. Sqlite has no
// row locks; its single writer gives the same ordering.
func (r *Repository) LockOwner(ctx context.Context, userID uuid.UUID) error {
	db := r.DB(ctx)
	query := db.Select("id").Where("id = ?", userID)
	if db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var owner models.User
	return query.Take(&owner).Error
}

// CountForUser returns how many wishlists the user owns.
func (r *Repository) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Wishlist{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SlugExists reports whether any wishlist already uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Wishlist{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ListItems returns a keyset-paginated page of items, newest first.
func (r *Repository) ListItems(ctx context.Context, wishlistID uuid.UUID, params pagination.Params) (pagination.Page[models.WishlistItem], error) {
	cursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return pagination.Page[models.WishlistItem]{}, err
	}

	query := r.DB(ctx).
		Preload("ProductVariant").
		Where("wishlist_id = ?", wishlistID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.WishlistItem
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return pagination.Page[models.WishlistItem]{}, err
	}

	return pagination.Trim(rows, params.Limit, func(item models.WishlistItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: item.CreatedAt, ID: item.ID}
	}), nil
}
