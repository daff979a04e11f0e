package controllers

import (
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/api/validators"
	"github.com/angelmondragon/wishlist-backend/internal/i18n"
	"github.com/angelmondragon/wishlist-backend/internal/products"
	"github.com/angelmondragon/wishlist-backend/internal/wishlist"
	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/angelmondragon/wishlist-backend/pkg/db/models"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
)

const (
	FirstWishlistPath = "/wishlist"
	WishlistsPath     = "/wishlists"
	CartSummaryPath   = "/cart"

	optionsPrefix = "options["
	maxOptions    = 20
)

// WishlistPath is where a shopper lands after changing a wishlist: the
// generic route when only one wishlist is allowed, the slug route otherwise.
func WishlistPath(cfg config.WishlistConfig, w *models.Wishlist) string {
	if !cfg.Multiple || w == nil || w.Slug == "" {
		return FirstWishlistPath
	}
	return WishlistsPath + "/" + w.Slug
}

type addItemRequest struct {
	WishlistID       string            `json:"wishlistId" validate:"omitempty,uuid"`
	ProductVariantID string            `json:"productVariantId" validate:"omitempty,uuid"`
	ProductID        string            `json:"productId" validate:"omitempty,uuid"`
	VariantCode      string            `json:"variantCode" validate:"omitempty,max=100"`
	Options          map[string]string `json:"options" validate:"omitempty,max=20,dive,keys,max=64,endkeys,max=255"`
}

type wishlistRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

type addItemResponse struct {
	Wishlist  wishlistRef `json:"wishlist"`
	ItemID    uuid.UUID   `json:"item_id"`
	VariantID uuid.UUID   `json:"product_variant_id"`
	Location  string      `json:"location"`
}

// WishlistItemAdd adds a variant to the caller's wishlist. Parameters come
// from the query string, a form body or a JSON body.
func WishlistItemAdd(svc wishlist.Service, bag FlashBag, tr Translator, cfg config.WishlistConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, err := parseAddItemRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.UserID = middleware.UserIDFromContext(ctx)
		input.Channel = middleware.ChannelFromContext(ctx)

		result, err := svc.AddItem(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		location := WishlistPath(cfg, result.Wishlist)
		if result.Duplicate {
			redirectWithFlash(w, r, bag, logg, enums.FlashInfo, tr.T(ctx, i18n.KeyAlreadyOnWishlist), location)
			return
		}

		if !middleware.IsHTML(ctx) {
			responses.WriteSuccessStatus(w, http.StatusCreated, addItemResponse{
				Wishlist:  wishlistRef{ID: result.Wishlist.ID, Title: result.Wishlist.Title, Slug: result.Wishlist.Slug},
				ItemID:    result.Item.ID,
				VariantID: result.Item.ProductVariantID,
				Location:  location,
			})
			return
		}
		redirectWithFlash(w, r, bag, logg, enums.FlashSuccess, tr.T(ctx, i18n.KeyItemAdded), location)
	}
}

// WishlistItemRemove deletes one of the caller's wishlist items.
func WishlistItemRemove(svc wishlist.Service, bag FlashBag, tr Translator, cfg config.WishlistConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		itemID, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		owner, err := svc.RemoveItem(ctx, middleware.UserIDFromContext(ctx), itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if !middleware.IsHTML(ctx) {
			responses.WriteNoContent(w)
			return
		}
		redirectWithFlash(w, r, bag, logg, enums.FlashSuccess, tr.T(ctx, i18n.KeyItemRemoved), WishlistPath(cfg, owner))
	}
}

// WishlistItemAddToCart puts one unit of the item's variant in the cart and
// redirects to the cart summary for every format.
func WishlistItemAddToCart(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		itemID, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, err := svc.AddItemToCart(ctx, middleware.UserIDFromContext(ctx), itemID, middleware.ChannelFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.Redirect(w, CartSummaryPath, nil)
	}
}

func itemIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "wishlist item not found")
	}
	return id, nil
}

func parseAddItemRequest(r *http.Request) (addItemRequest, error) {
	var req addItemRequest

	if isJSONBody(r) {
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return req, err
		}
		query := r.URL.Query()
		req.WishlistID = firstNonEmpty(req.WishlistID, query.Get("wishlistId"))
		req.ProductVariantID = firstNonEmpty(req.ProductVariantID, query.Get("productVariantId"))
		req.ProductID = firstNonEmpty(req.ProductID, query.Get("productId"))
		req.VariantCode = firstNonEmpty(req.VariantCode, query.Get("variantCode"))
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	req.WishlistID = strings.TrimSpace(r.Form.Get("wishlistId"))
	req.ProductVariantID = strings.TrimSpace(r.Form.Get("productVariantId"))
	req.ProductID = strings.TrimSpace(r.Form.Get("productId"))
	req.VariantCode = validators.SanitizeString(r.Form.Get("variantCode"), 100)
	for key, values := range r.Form {
		if !strings.HasPrefix(key, optionsPrefix) || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		name := strings.TrimSpace(key[len(optionsPrefix) : len(key)-1])
		if name == "" {
			continue
		}
		if req.Options == nil {
			req.Options = map[string]string{}
		}
		if len(req.Options) >= maxOptions {
			return req, pkgerrors.New(pkgerrors.CodeValidation, "too many options")
		}
		req.Options[name] = validators.SanitizeString(values[0], 255)
	}
	return req, validators.ValidateStruct(&req)
}

func (req addItemRequest) toInput() (wishlist.AddItemInput, error) {
	var input wishlist.AddItemInput

	wishlistID, err := validators.ParseOptionalUUID(req.WishlistID, "wishlistId")
	if err != nil {
		return input, err
	}
	variantID, err := validators.ParseOptionalUUID(req.ProductVariantID, "productVariantId")
	if err != nil {
		return input, err
	}
	productID, err := validators.ParseOptionalUUID(req.ProductID, "productId")
	if err != nil {
		return input, err
	}

	input.WishlistID = wishlistID
	input.VariantID = variantID
	input.Variant = products.VariantQuery{
		VariantCode: strings.TrimSpace(req.VariantCode),
		Options:     req.Options,
	}
	if productID != nil {
		input.Variant.ProductID = *productID
	}
	return input, nil
}

func isJSONBody(r *http.Request) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
