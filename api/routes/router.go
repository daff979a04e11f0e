package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/wishlist-backend/api/controllers"
	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/internal/auth"
	"github.com/angelmondragon/wishlist-backend/internal/cart"
	"github.com/angelmondragon/wishlist-backend/internal/i18n"
	"github.com/angelmondragon/wishlist-backend/internal/wishlist"
	"github.com/angelmondragon/wishlist-backend/pkg/auth/session"
	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/metrics"
)

// RedisStore is the redis surface used by the HTTP layer.
type RedisStore interface {
	Ping(context.Context) error
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// Dependencies collects everything the router hands to controllers.
type Dependencies struct {
	DB             controllers.Pinger
	Redis          RedisStore
	Sessions       session.AccessSessionChecker
	Auth           auth.Service
	Register       auth.RegisterService
	Wishlist       wishlist.Service
	Cart           cart.Service
	Flashes        controllers.FlashBag
	Translator     *i18n.Translator
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
		middleware.Format(),
		middleware.Channel(cfg.Wishlist.DefaultChannel, logg),
		middleware.Locale(deps.Translator),
	)

	var redisStore RedisStore
	var redisPinger controllers.Pinger
	if deps.Redis != nil {
		redisStore = deps.Redis
		redisPinger = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": redisPinger,
		}))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	authn := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisStore, logg)).Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(authn, middleware.RequireAuth(logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	wishlistCfg := cfg.Wishlist
	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFirst(deps.Wishlist, logg))
			r.Post("/items", controllers.WishlistItemAdd(deps.Wishlist, deps.Flashes, deps.Translator, wishlistCfg, logg))
			r.Delete("/items/{id}", controllers.WishlistItemRemove(deps.Wishlist, deps.Flashes, deps.Translator, wishlistCfg, logg))
			r.Post("/items/{id}/remove", controllers.WishlistItemRemove(deps.Wishlist, deps.Flashes, deps.Translator, wishlistCfg, logg))
			r.With(middleware.Idempotency(redisStore, middleware.DefaultIdempotencyTTL, logg)).
				Post("/items/{id}/add-to-cart", controllers.WishlistItemAddToCart(deps.Wishlist, logg))
		})

		r.Route("/wishlists", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/", controllers.WishlistCreate(deps.Wishlist, wishlistCfg, logg))
			r.Get("/{slug}", controllers.WishlistShow(deps.Wishlist, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartSummary(deps.Cart, logg))
			r.Delete("/items/{id}", controllers.CartItemRemove(deps.Cart, logg))
			r.Post("/items/{id}/remove", controllers.CartItemRemove(deps.Cart, logg))
		})
		r.Get("/flashes", controllers.FlashList(deps.Flashes, logg))
	})

	return r
}
