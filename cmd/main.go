package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pending"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser := logging.New(logging.Options{Service: "storefront-go", File: cfg.LogFile, Level: cfg.LogLevel})
	defer logCloser.Close()
	slog.SetDefault(logger)

	// money travels as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- pending order store ---
	store, closeStore, err := newPendingStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- AMQP ---
	var publisher checkout.EventPublisher = events.NopPublisher{}
	if cfg.EventsEnabled {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		defer pub.Close()
		publisher = pub
	}

	// --- upstream ---
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	backend := clients.NewClient("backend", cfg.BackendURL, httpClient, clients.BreakerConfig{
		MaxFailures: cfg.BreakerFailures,
		OpenTimeout: cfg.BreakerTimeout,
	})

	m := metrics.New()
	carts := cart.NewRegistry()
	svc := checkout.NewService(carts, checkout.Deps{
		Orders:   clients.NewOrderClient(backend),
		Payments: clients.NewPaymentClient(backend),
		Pending:  store,
		Opener:   checkout.RedirectOpener{},
		Events:   publisher,
		Metrics:  m,
		Logger:   logger,
	}, checkout.Config{
		PollInterval:    cfg.PollInterval,
		PollMaxDuration: cfg.PollMaxDuration,
		PendingMaxAge:   cfg.PendingMaxAge,
		SessionIdleTTL:  cfg.SessionIdleTTL,
		SweepInterval:   cfg.SessionSweepInterval,
	})
	defer svc.Shutdown()

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.NewHandler(carts, svc, clients.NewCatalogClient(backend)), httpapi.RouterOptions{
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Metrics:          m,
		Logger:           logger,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", "addr", server.Addr, "backend", cfg.BackendURL, "pendingStore", cfg.PendingStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		svc.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		svc.Shutdown()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func newPendingStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (pending.Store, func(), error) {
	switch cfg.PendingStore {
	case config.PendingStorePostgres:
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				return nil, nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		return pending.NewPostgresStore(pool), pool.Close, nil

	case config.PendingStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		return pending.NewRedisStore(rdb, cfg.PendingMaxAge), func() { _ = rdb.Close() }, nil

	default:
		logger.Warn("pending orders kept in memory; they will not survive a restart")
		return pending.NewMemoryStore(), func() {}, nil
	}
}
