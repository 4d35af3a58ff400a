package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickshop/quickshop-backend/api/controllers"
	"github.com/quickshop/quickshop-backend/api/middleware"
	cartsvc "github.com/quickshop/quickshop-backend/internal/cart"
	checkoutsvc "github.com/quickshop/quickshop-backend/internal/checkout"
	"github.com/quickshop/quickshop-backend/internal/discounts"
	orderssvc "github.com/quickshop/quickshop-backend/internal/orders"
	"github.com/quickshop/quickshop-backend/pkg/config"
	"github.com/quickshop/quickshop-backend/pkg/db"
	"github.com/quickshop/quickshop-backend/pkg/enums"
	"github.com/quickshop/quickshop-backend/pkg/logger"
	"github.com/quickshop/quickshop-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: health and metrics endpoints, the
// merchant rule-management API, and the storefront pricing API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	discountsService discounts.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService orderssvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	quotePolicy := middleware.NewRateLimitPolicy("quote", cfg.RateLimit.Window, cfg.RateLimit.QuoteLimit)
	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", cfg.RateLimit.Window, cfg.RateLimit.CheckoutLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.StoreContext(logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Route("/discounts", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleMerchant.String(), logg))
			r.Get("/", controllers.DiscountList(discountsService, logg))
			r.Post("/", controllers.DiscountCreate(discountsService, logg))
			r.Get("/{ruleId}", controllers.DiscountGet(discountsService, logg))
			r.Put("/{ruleId}", controllers.DiscountUpdate(discountsService, logg))
			r.Delete("/{ruleId}", controllers.DiscountDelete(discountsService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleCustomer.String(), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartService, logg))
				r.Put("/", controllers.CartUpsert(cartService, logg))
				r.With(middleware.RateLimit(quotePolicy, redisClient, logg)).
					Post("/quote", controllers.CartQuote(cartService, logg))
			})

			r.With(middleware.RateLimit(checkoutPolicy, redisClient, logg)).
				Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(ordersService, logg))
				r.Get("/{orderId}", controllers.OrderGet(ordersService, logg))
			})
		})
	})

	return r
}
