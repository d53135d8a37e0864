package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_checkout/internal/cart"
	"github.com/fjod/go_checkout/internal/catalog"
	"github.com/fjod/go_checkout/internal/checkout"
	"github.com/fjod/go_checkout/internal/config"
	"github.com/fjod/go_checkout/internal/events"
	h "github.com/fjod/go_checkout/internal/http"
	"github.com/fjod/go_checkout/internal/orders"
	"github.com/fjod/go_checkout/internal/pricing"
	"github.com/fjod/go_checkout/internal/storage"
	"github.com/fjod/go_checkout/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cart storage
	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to open cart storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer closeStore()
	carts := cart.NewStore(store, cfg.SharedCartKey, zl)
	zl.Info("cart storage ready", zap.String("backend", cfg.StorageBackend))

	// Catalog
	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		zl.Fatal("failed to open catalog database", zap.String("path", cfg.CatalogDBPath), zap.Error(err))
	}
	defer repo.Close()
	if err := repo.RunMigrations(); err != nil {
		zl.Fatal("failed to migrate catalog database", zap.Error(err))
	}
	products := catalog.NewCachedSource(repo, cfg.CatalogCacheTTL)

	// Shipping rates
	rates := pricing.DefaultTable()
	if cfg.ShippingRatesPath != "" {
		if rates, err = pricing.LoadTable(cfg.ShippingRatesPath); err != nil {
			zl.Fatal("failed to load shipping rates", zap.String("path", cfg.ShippingRatesPath), zap.Error(err))
		}
	}

	ordersClient, err := orders.NewClient(cfg.OrdersBaseURL, cfg.Routes, zl)
	if err != nil {
		zl.Fatal("failed to build orders client", zap.Error(err))
	}

	// Events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaEnabled() {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp

		clearer := events.NewCartClearer(carts, zl, cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer clearer.Close()
		go clearer.Run(ctx)
		zl.Info("kafka enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	registry := checkout.NewRegistry(checkout.Deps{
		Carts:          carts,
		Catalog:        products,
		Calculator:     pricing.NewCalculator(rates),
		Orders:         ordersClient,
		Events:         publisher,
		Logger:         zl,
		DefaultCountry: cfg.DefaultCountry,
	})
	go sweepSessions(ctx, registry, cfg.SessionIdleTimeout, zl)

	router := h.NewRouter(
		h.NewCheckoutHandler(registry, cfg.RequestTimeout, zl),
		h.NewContributionHandler(ordersClient, zl),
		zl,
	)

	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		zl.Info("checkout API starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// gRPC health for orchestrators
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCHealthPort))
	if err != nil {
		zl.Fatal("failed to listen", zap.String("port", cfg.GRPCHealthPort), zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	go func() {
		zl.Info("health service listening", zap.String("port", cfg.GRPCHealthPort))
		if err := grpcServer.Serve(lis); err != nil {
			zl.Fatal("failed to serve health", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	zl.Info("shutting down checkout service")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	zl.Info("checkout service stopped")
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), func() {}, nil

	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, storage.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDBName,
			MaxPoolSize:    cfg.MongoMaxPoolSize,
			MinPoolSize:    cfg.MongoMinPoolSize,
			ConnectTimeout: cfg.MongoConnectTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		ms := storage.NewMongoStore(db, cfg.CartTTL)
		if err := ms.CreateIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return nil, nil, err
		}
		return ms, func() { _ = db.Client().Disconnect(context.Background()) }, nil

	default:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return storage.NewRedisStore(client, cfg.CartTTL), func() { _ = client.Close() }, nil
	}
}

// sweepSessions drops sessions nobody has touched for idle.
func sweepSessions(ctx context.Context, registry *checkout.Registry, idle time.Duration, zl *zap.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(idle); n > 0 {
				zl.Info("swept idle checkout sessions", zap.Int("count", n), zap.Int("live", registry.Len()))
			}
		}
	}
}
