package storage

import (
	"context"
	"errors"
)

// Storage is the string-keyed persistence port the cart store writes through.
// Values are opaque strings (JSON-encoded cart lines in practice).
// Implementations must be safe for concurrent use.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
