package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestMongo(t *testing.T) (*MongoStore, func()) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, MongoConfig{URI: uri, Database: "testdb", MaxPoolSize: 5, MinPoolSize: 1})
	require.NoError(t, err)

	store := NewMongoStore(db, time.Hour)
	require.NoError(t, store.CreateIndexes(ctx))

	cleanup := func() {
		_ = db.Client().Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return store, cleanup
}

func TestMongoStore_GetMissing(t *testing.T) {
	store, cleanup := setupTestMongo(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoStore_SetOverwritesAndRemoves(t *testing.T) {
	store, cleanup := setupTestMongo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:t1:u1", `[{"productId":1,"quantity":1}]`))
	require.NoError(t, store.Set(ctx, "cart:t1:u1", `[{"productId":1,"quantity":4}]`))

	value, err := store.Get(ctx, "cart:t1:u1")
	require.NoError(t, err)
	assert.Equal(t, `[{"productId":1,"quantity":4}]`, value)

	require.NoError(t, store.Remove(ctx, "cart:t1:u1"))
	_, err = store.Get(ctx, "cart:t1:u1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Remove(ctx, "cart:t1:u1"))
}

func TestMongoStore_ContextCancellation(t *testing.T) {
	store, cleanup := setupTestMongo(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(10 * time.Millisecond)

	_, err := store.Get(ctx, "cart:t1:u1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
