package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxAccessID contextKey = "access_id"
	ctxFormat   contextKey = "request_format"
	ctxChannel  contextKey = "channel_code"
)

// FormatHTML is the request format browsers get by default.
const FormatHTML = "html"

// UserIDFromContext returns the authenticated shopper or uuid.Nil for
// anonymous requests.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// AccessIDFromContext returns the jti of the bearer token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// FormatFromContext returns the negotiated request format, html when unset.
func FormatFromContext(ctx context.Context) string {
	if ctx != nil {
		if v, ok := ctx.Value(ctxFormat).(string); ok && v != "" {
			return v
		}
	}
	return FormatHTML
}

// IsHTML reports whether the request expects a browser response.
func IsHTML(ctx context.Context) bool {
	return FormatFromContext(ctx) == FormatHTML
}

func ChannelFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxChannel).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

func WithFormat(ctx context.Context, format string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxFormat, format)
}

func WithChannel(ctx context.Context, channel string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxChannel, channel)
}
