package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/cartline/cartline-backend/api/controllers"
	"github.com/cartline/cartline-backend/api/routes"
	"github.com/cartline/cartline-backend/internal/auth"
	"github.com/cartline/cartline-backend/internal/cart"
	"github.com/cartline/cartline-backend/internal/orders"
	"github.com/cartline/cartline-backend/internal/products"
	"github.com/cartline/cartline-backend/internal/users"
	"github.com/cartline/cartline-backend/pkg/auth/session"
	"github.com/cartline/cartline-backend/pkg/config"
	"github.com/cartline/cartline-backend/pkg/currency"
	"github.com/cartline/cartline-backend/pkg/db"
	"github.com/cartline/cartline-backend/pkg/events"
	"github.com/cartline/cartline-backend/pkg/events/rabbitmq"
	"github.com/cartline/cartline-backend/pkg/logger"
	"github.com/cartline/cartline-backend/pkg/metrics"
	"github.com/cartline/cartline-backend/pkg/migrate"
	"github.com/cartline/cartline-backend/pkg/redis"
	"github.com/cartline/cartline-backend/pkg/security"
	"github.com/cartline/cartline-backend/pkg/storage"
	"github.com/cartline/cartline-backend/pkg/storage/gcs"
	"github.com/cartline/cartline-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	media, err := newObjectStore(ctx, cfg, logg)
	requireResource(ctx, logg, "storage", err)

	publisher, err := newPublisher(cfg, logg)
	requireResource(ctx, logg, "events", err)

	var (
		httpMetrics     *metrics.HTTPMetrics
		commerceMetrics *metrics.CommerceMetrics
		metricsHandler  http.Handler
	)
	if cfg.FeatureFlags.EnableMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		httpMetrics = metrics.NewHTTPMetrics(reg)
		commerceMetrics = metrics.NewCommerceMetrics(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	converter, err := currency.NewStaticConverter(cfg.Currency)
	requireResource(ctx, logg, "currency converter", err)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	hasher := security.NewHasher(cfg.Password)
	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		Hasher:         hasher,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	requireResource(ctx, logg, "auth service", err)

	userService, err := users.NewService(users.ServiceParams{Repo: userRepo, Hasher: hasher, Media: media})
	requireResource(ctx, logg, "user service", err)

	productService, err := products.NewService(productRepo, converter)
	requireResource(ctx, logg, "product service", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:      cartRepo,
		Tx:        dbClient,
		Products:  productRepo,
		Converter: converter,
		Metrics:   commerceMetrics,
	})
	requireResource(ctx, logg, "cart service", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(dbClient.DB()),
		Carts:     cartRepo,
		Tx:        dbClient,
		Publisher: publisher,
		Metrics:   commerceMetrics,
		Logger:    logg,
	})
	requireResource(ctx, logg, "order service", err)

	readiness := map[string]controllers.Pinger{
		"db":      dbClient,
		"redis":   redisClient,
		"storage": media,
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver,
		"events":  cfg.Events.Enabled(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			readiness,
			redisClient,
			redisClient,
			sessionManager,
			routes.Observability{HTTPMetrics: httpMetrics, Handler: metricsHandler},
			authService,
			userService,
			productService,
			cartService,
			orderService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := server.Shutdown(shutdownCtx)
	closeErr = multierr.Append(closeErr, publisher.Close())
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(shutdownCtx, "error during shutdown", closeErr)
		exitCode = 1
	}
	logg.Info(shutdownCtx, "api server stopped")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.ObjectStore, error) {
	if cfg.Storage.UsesGCS() {
		return gcs.NewClient(ctx, cfg.Storage, cfg.GCP, logg)
	}
	return local.New(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
}

func newPublisher(cfg *config.Config, logg *logger.Logger) (events.Publisher, error) {
	if !cfg.Events.Enabled() {
		return events.Noop{}, nil
	}
	return rabbitmq.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logg)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
