package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	carthttp "github.com/dwikikusuma/storefront/internal/cart/httpapi"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	"github.com/dwikikusuma/storefront/internal/cart/infra/redisstore"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/storefront/internal/catalog/httpapi"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/remote"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/static"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkouthttp "github.com/dwikikusuma/storefront/internal/checkout/httpapi"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"

	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/redisconn"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/dwikikusuma/storefront/pkg/tracing"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

var version = "dev"

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   serviceName,
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("exiting after failure", slog.Any("err", err))
		cancel()
		os.Exit(1)
	}
	log.Info("bye")
}

// run serves until ctx ends or the server fails, then shuts down. A failed
// listener is returned.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Service:  serviceName,
		Version:  version,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("tracing init: %w", err)
	}

	// Catalog
	source, err := productSource(cfg, log)
	if err != nil {
		return err
	}
	catalogSvc := catalogapp.NewService(source, log.With(slog.String("component", "catalog")))

	// Cart
	backend, closeBackend, err := sessionBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()
	cartSvc := cartapp.NewService(backend, cartadapter.NewCatalogFinder(catalogSvc), log.With(slog.String("component", "cart")))

	// Checkout (adapters)
	cartReader := checkoutadapter.NewCartServiceReader(cartSvc)
	catalogReader := checkoutadapter.NewCatalogServiceReader(catalogSvc)
	checkoutSvc := checkoutapp.NewService(cartReader, catalogReader, cfg.CheckoutConcurrency)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := cartSvc.Ping(pingCtx); err != nil {
			httpx.WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	cataloghttp.NewHandler(catalogSvc).Register(r)
	carthttp.NewHandler(cartSvc, log).Register(r)
	checkouthttp.NewHandler(checkoutSvc, log).Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           httpx.WithRequestID(httpx.WithSession(httpx.WithLogging(log)(r))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		catalogSvc.Load(gctx)
		return nil
	})

	g.Go(func() error {
		pruneIdleSessions(gctx, cartSvc, cfg.SessionIdle, log)
		return nil
	})

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
			return err
		}
		return nil
	})

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.Any("err", err))
	}

	return g.Wait()
}

func productSource(cfg config.Config, log *slog.Logger) (catalogapp.ProductSource, error) {
	switch cfg.CatalogSource {
	case config.CatalogStatic:
		src, err := static.NewProductSource()
		if err != nil {
			return nil, fmt.Errorf("static catalog: %w", err)
		}
		return src, nil
	case config.CatalogRemote:
		log.Info("catalog source", slog.String("url", cfg.CatalogURL))
		return remote.NewProductSource(cfg.CatalogURL, cfg.CatalogTimeout), nil
	default:
		return nil, fmt.Errorf("unknown CATALOG_SOURCE %q", cfg.CatalogSource)
	}
}

func sessionBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (cartapp.SessionBackend, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionMemory:
		return memory.NewSessionStore(), func() {}, nil
	case config.SessionRedis:
		client, err := redisconn.Open(ctx, redisconn.Config{Addr: cfg.RedisAddr}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("redis open: %w", err)
		}
		return redisstore.NewSessionStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}

// pruneIdleSessions drops idle in-process stores until ctx ends. The
// persisted carts are untouched.
func pruneIdleSessions(ctx context.Context, svc *cartapp.Service, idle time.Duration, log *slog.Logger) {
	if idle <= 0 {
		return
	}
	t := time.NewTicker(idle)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := svc.Prune(idle); n > 0 {
				log.Debug("pruned idle sessions", slog.Int("count", n))
			}
		}
	}
}
