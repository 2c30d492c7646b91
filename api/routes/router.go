package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cartline/cartline-backend/api/controllers"
	"github.com/cartline/cartline-backend/api/middleware"
	"github.com/cartline/cartline-backend/internal/auth"
	"github.com/cartline/cartline-backend/internal/cart"
	"github.com/cartline/cartline-backend/internal/orders"
	"github.com/cartline/cartline-backend/internal/products"
	"github.com/cartline/cartline-backend/internal/users"
	"github.com/cartline/cartline-backend/pkg/auth/session"
	"github.com/cartline/cartline-backend/pkg/config"
	"github.com/cartline/cartline-backend/pkg/logger"
	"github.com/cartline/cartline-backend/pkg/metrics"
	pkgredis "github.com/cartline/cartline-backend/pkg/redis"
)

// login bodies are tiny; anything larger is not a credential payload
const maxLoginBody = 64 << 10

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Observability groups the optional HTTP metrics hooks. A zero value disables them.
type Observability struct {
	HTTPMetrics *metrics.HTTPMetrics
	Handler     http.Handler
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	rateLimiter pkgredis.RateLimiter,
	sessionManager sessionManager,
	obs Observability,
	authService auth.Service,
	userService users.Service,
	productService products.Service,
	cartService cart.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(obs.HTTPMetrics),
	)

	maxUpload := cfg.Media.MaxUploadBytes()
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
	requireAuth := middleware.Auth(cfg.JWT, sessionManager, logg)
	idempotent := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})

	if obs.Handler != nil {
		r.Method(http.MethodGet, "/metrics", obs.Handler)
	}

	if !cfg.Storage.UsesGCS() && cfg.Storage.LocalDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.LocalDir))))
	}

	r.With(middleware.AuthRateLimit(loginPolicy, rateLimiter, maxLoginBody, logg)).Post("/login", controllers.AuthLogin(authService, logg))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Get("/{productId}", controllers.ProductGet(productService, logg))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(productService, logg))
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, rateLimiter, maxUpload+(1<<20), logg)).Post("/", controllers.UserRegister(userService, maxUpload, logg))

		r.Route("/{userId}", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireSelf("userId", logg))

			r.Get("/", controllers.UserGet(userService, logg))
			r.Put("/", controllers.UserUpdate(userService, maxUpload, logg))

			r.With(idempotent).Post("/cart", controllers.CartAdd(cartService, logg))
			r.Put("/cart", controllers.CartUpdate(cartService, logg))
			r.Get("/cart", controllers.CartList(cartService, logg))
			r.Delete("/cart", controllers.CartClear(cartService, logg))

			r.With(idempotent).Post("/orders", controllers.OrderCreate(orderService, logg))
			r.Put("/orders", controllers.OrderUpdate(orderService, logg))
			r.Get("/orders", controllers.OrderList(orderService, logg))
			r.Get("/orders/{orderId}", controllers.OrderGet(orderService, logg))
		})
	})

	return r
}
