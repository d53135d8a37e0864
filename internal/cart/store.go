package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/storage"
	"go.uber.org/zap"
)

// Store persists cart snapshots through a storage port. Every write goes to the
// snapshot's own key and to the shared key.
type Store struct {
	storage   storage.Storage
	sharedKey string
	logger    *zap.Logger
}

func NewStore(s storage.Storage, sharedKey string, logger *zap.Logger) *Store {
	if sharedKey == "" {
		sharedKey = DefaultSharedKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: s, sharedKey: sharedKey, logger: logger}
}

func (s *Store) SharedKey() string {
	return s.sharedKey
}

// ResolveStorageKey returns the first candidate holding a non-empty, parseable
// cart. With no match it returns the first candidate, or the fallback when there
// are no candidates. It never writes.
func (s *Store) ResolveStorageKey(ctx context.Context, keys Keys) string {
	for _, key := range keys.Candidates {
		raw, err := s.storage.Get(ctx, key)
		if err != nil {
			continue
		}
		lines, err := decodeLines(raw)
		if err != nil || len(lines) == 0 {
			continue
		}
		return key
	}
	return keys.Primary()
}

// Load reads the cart at key. Missing, unreadable and corrupt data all yield an
// empty snapshot; the latter two are logged.
func (s *Store) Load(ctx context.Context, key string) domain.CartSnapshot {
	snapshot := domain.CartSnapshot{Key: key}

	raw, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return snapshot
	}
	if err != nil {
		s.logger.Warn("cart storage read failed", zap.String("key", key), zap.Error(err))
		return snapshot
	}

	lines, err := decodeLines(raw)
	if err != nil {
		s.logger.Warn("discarding corrupt cart data", zap.String("key", key), zap.Error(err))
		return snapshot
	}
	snapshot.Lines = lines
	return snapshot
}

// Save writes the snapshot to its key and the shared key. An empty snapshot
// removes both keys instead.
func (s *Store) Save(ctx context.Context, snapshot domain.CartSnapshot) error {
	keys := []string{snapshot.Key}
	if s.sharedKey != snapshot.Key {
		keys = append(keys, s.sharedKey)
	}

	if snapshot.IsEmpty() {
		for _, key := range keys {
			if err := s.storage.Remove(ctx, key); err != nil {
				return fmt.Errorf("failed to remove cart %s: %w", key, err)
			}
		}
		return nil
	}

	payload, err := json.Marshal(snapshot.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	for _, key := range keys {
		if err := s.storage.Set(ctx, key, string(payload)); err != nil {
			return fmt.Errorf("failed to write cart %s: %w", key, err)
		}
	}
	return nil
}

// Clear erases every key the cart may occupy, plus primary, and returns an empty
// snapshot bound to primary. All removals are attempted even if some fail.
func (s *Store) Clear(ctx context.Context, keys Keys, primary string) (domain.CartSnapshot, error) {
	if keys.Shared == "" {
		keys.Shared = s.sharedKey
	}
	targets := keys.All()
	if primary != "" {
		targets = append(targets, primary)
	}

	var errs []error
	seen := make(map[string]struct{}, len(targets))
	for _, key := range targets {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if err := s.storage.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove cart %s: %w", key, err))
		}
	}
	return domain.CartSnapshot{Key: primary}, errors.Join(errs...)
}

// decodeLines parses a persisted cart and normalises it: lines with quantity
// below one are dropped and duplicate lines merge into the first occurrence.
func decodeLines(raw string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}

	out := make([]domain.CartLine, 0, len(lines))
	index := make(map[domain.LineKey]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 || line.ProductID.IsZero() {
			continue
		}
		if line.VariantID != nil && line.VariantID.IsZero() {
			line.VariantID = nil
		}
		if i, ok := index[line.Key()]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.Key()] = len(out)
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
