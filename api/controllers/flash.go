package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/types"
)

// FlashBag stores one-shot messages for the next page a shopper renders.
type FlashBag interface {
	Add(ctx context.Context, userID uuid.UUID, kind enums.FlashType, message string) error
	Consume(ctx context.Context, userID uuid.UUID) ([]types.Flash, error)
}

// Translator renders message keys in the request language.
type Translator interface {
	T(ctx context.Context, key string, args ...any) string
}

// FlashList drains the caller's pending flash messages.
func FlashList(bag FlashBag, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		flashes, err := bag.Consume(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read flashes"))
			return
		}
		if flashes == nil {
			flashes = []types.Flash{}
		}
		responses.WriteSuccess(w, flashes)
	}
}

// redirectWithFlash sends the shopper to location. Browsers get the message
// through the flash bag; API clients get it inline.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, bag FlashBag, logg *logger.Logger, kind enums.FlashType, message, location string) {
	ctx := r.Context()
	if !middleware.IsHTML(ctx) {
		responses.Redirect(w, location, []types.Flash{{Type: kind.String(), Message: message}})
		return
	}
	if bag != nil {
		if err := bag.Add(ctx, middleware.UserIDFromContext(ctx), kind, message); err != nil && logg != nil {
			logg.Error(ctx, "flash.add_failed", err)
		}
	}
	responses.Redirect(w, location, nil)
}
