package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
)

// CartSummary renders the caller's active cart for the request channel.
func CartSummary(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		summary, err := svc.Summary(ctx, middleware.UserIDFromContext(ctx), middleware.ChannelFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// CartItemRemove deletes one line of the caller's cart. Html requests go back
// to the cart summary, others get 204.
func CartItemRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		itemID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found"))
			return
		}

		if _, err := svc.RemoveItem(ctx, middleware.UserIDFromContext(ctx), middleware.ChannelFromContext(ctx), itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !middleware.IsHTML(ctx) {
			responses.WriteNoContent(w)
			return
		}
		responses.Redirect(w, CartSummaryPath, nil)
	}
}
