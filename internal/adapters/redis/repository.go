package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/redis/go-redis/v9"
)

const (
	// CartKeyPrefix is the prefix for cart session keys in Redis
	CartKeyPrefix = "cart:"
	// SnapshotKeyPrefix is the prefix for snapshot keys in Redis
	SnapshotKeyPrefix = "snapshot:"
	// DefaultCartTTL is the default TTL for carts (7 days)
	DefaultCartTTL = 7 * 24 * time.Hour
)

// Repository implements CartRepository using Redis
type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Get retrieves a cart from Redis
func (r *Repository) Get(ctx context.Context, sessionID string) (*core.Cart, error) {
	val, err := r.client.Get(ctx, CartKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, core.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart core.Cart
	if err := json.Unmarshal(val, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	return &cart, nil
}

// Set stores a cart in Redis with TTL. The TTL restarts on every write.
func (r *Repository) Set(ctx context.Context, cart *core.Cart, ttl time.Duration) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultCartTTL
	}

	if err := r.client.Set(ctx, CartKeyPrefix+cart.SessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cart: %w", err)
	}

	return nil
}

// Delete removes a cart from Redis
func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, CartKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// SnapshotStore implements core.SnapshotStore on Redis strings without expiry
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore creates a new Redis snapshot store
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Load retrieves the snapshot stored under key
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, SnapshotKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return val, nil
}

// Save overwrites the snapshot stored under key
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, SnapshotKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
