package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig tunes the cart collection's connection. Zero pool sizes and
// timeouts take the defaults below.
type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

const (
	defaultMongoMaxPool        = 100
	defaultMongoMinPool        = 10
	defaultMongoConnectTimeout = 10 * time.Second
)

func (c MongoConfig) clientOptions() *options.ClientOptions {
	maxPool, minPool, timeout := c.MaxPoolSize, c.MinPoolSize, c.ConnectTimeout
	if maxPool == 0 {
		maxPool = defaultMongoMaxPool
	}
	if minPool == 0 {
		minPool = defaultMongoMinPool
	}
	if minPool > maxPool {
		minPool = maxPool
	}
	if timeout <= 0 {
		timeout = defaultMongoConnectTimeout
	}
	return options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout / 2).
		SetMaxPoolSize(maxPool).
		SetMinPoolSize(minPool)
}

// ConnectMongoDB connects and pings before handing out the cart database.
func ConnectMongoDB(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, cfg.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(cfg.Database), nil
}
