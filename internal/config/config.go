package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_checkout/internal/routes"
)

const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	HTTPPort       string
	GRPCHealthPort string
	LogLevel       string
	LogFormat      string

	StorageBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CartTTL        time.Duration
	MongoURI       string
	MongoDBName    string
	SharedCartKey  string

	MongoMaxPoolSize    uint64
	MongoMinPoolSize    uint64
	MongoConnectTimeout time.Duration

	CatalogDBPath     string
	CatalogCacheTTL   time.Duration
	ShippingRatesPath string
	DefaultCountry    string

	OrdersBaseURL      string
	Routes             routes.Table
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	SessionIdleTimeout time.Duration

	// Kafka is disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       getenv("HTTP_PORT", "8080"),
		GRPCHealthPort: getenv("GRPC_HEALTH_PORT", "50057"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),

		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", BackendRedis)),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		CartTTL:        parseDuration(getenv("CART_TTL", "720h"), 720*time.Hour),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getenv("MONGO_DB_NAME", "checkout"),
		SharedCartKey:  getenv("SHARED_CART_KEY", "cart"),

		MongoConnectTimeout: parseDuration(getenv("MONGO_CONNECT_TIMEOUT", "10s"), 10*time.Second),

		CatalogDBPath:     getenv("CATALOG_DB_PATH", "catalog.db"),
		CatalogCacheTTL:   parseDuration(getenv("CATALOG_CACHE_TTL", "30s"), 30*time.Second),
		ShippingRatesPath: os.Getenv("SHIPPING_RATES_PATH"),
		DefaultCountry:    getenv("DEFAULT_COUNTRY", "Philippines"),

		OrdersBaseURL: getenv("ORDERS_BASE_URL", "http://localhost:8000"),
		Routes: routes.Table{
			routes.OrderCreate:        getenv("ORDERS_ROUTE", "/m/{client}/orders"),
			routes.ContributionCreate: getenv("CONTRIBUTIONS_ROUTE", "/kiosk/community/{client}/contributions"),
		},
		RequestTimeout:     parseDuration(getenv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		ShutdownTimeout:    parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		SessionIdleTimeout: parseDuration(getenv("SESSION_IDLE_TIMEOUT", "2h"), 2*time.Hour),

		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "checkout-events"),
	}

	db, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = db

	if cfg.MongoMaxPoolSize, err = strconv.ParseUint(getenv("MONGO_MAX_POOL_SIZE", "100"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("invalid MONGO_MAX_POOL_SIZE: %w", err)
	}
	if cfg.MongoMinPoolSize, err = strconv.ParseUint(getenv("MONGO_MIN_POOL_SIZE", "10"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("invalid MONGO_MIN_POOL_SIZE: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendRedis, BackendMongo, BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	return cfg, nil
}

func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
