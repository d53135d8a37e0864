package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoConfig_Defaults(t *testing.T) {
	opts := MongoConfig{URI: "mongodb://localhost:27017"}.clientOptions()

	require.NotNil(t, opts.MaxPoolSize)
	require.NotNil(t, opts.MinPoolSize)
	assert.Equal(t, uint64(100), *opts.MaxPoolSize)
	assert.Equal(t, uint64(10), *opts.MinPoolSize)
	assert.Equal(t, 10*time.Second, *opts.ConnectTimeout)
	assert.Equal(t, 5*time.Second, *opts.ServerSelectionTimeout)
}

func TestMongoConfig_Overrides(t *testing.T) {
	opts := MongoConfig{
		URI:            "mongodb://localhost:27017",
		MaxPoolSize:    20,
		MinPoolSize:    50,
		ConnectTimeout: 4 * time.Second,
	}.clientOptions()

	assert.Equal(t, uint64(20), *opts.MaxPoolSize)
	assert.Equal(t, uint64(20), *opts.MinPoolSize, "min is capped at max")
	assert.Equal(t, 4*time.Second, *opts.ConnectTimeout)
	assert.Equal(t, 2*time.Second, *opts.ServerSelectionTimeout)
}
