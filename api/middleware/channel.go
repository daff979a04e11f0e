package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/wishlist-backend/pkg/logger"
)

const channelHeader = "X-Channel-Code"

// Channel resolves the sales channel from X-Channel-Code, falling back to
// the configured default.
func Channel(defaultChannel string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			channel := strings.TrimSpace(r.Header.Get(channelHeader))
			if channel == "" {
				channel = defaultChannel
			}
			ctx := WithChannel(r.Context(), channel)
			if logg != nil {
				ctx = logg.WithChannel(ctx, channel)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
