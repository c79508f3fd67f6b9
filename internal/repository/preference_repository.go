package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/dcu-portal-api/internal/models"
	appErrors "github.com/noah-isme/dcu-portal-api/pkg/errors"
)

// RedisPreferenceRepository keeps one theme key per client in Redis. Keys never expire, matching a
// browser's persistent storage.
type RedisPreferenceRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisPreferenceRepository constructs a Redis-backed preference repository.
func NewRedisPreferenceRepository(client *redis.Client, prefix string, logger *zap.Logger) *RedisPreferenceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPreferenceRepository{client: client, prefix: prefix, logger: logger}
}

func (r *RedisPreferenceRepository) key(clientID string) string {
	return preferenceKey(r.prefix, clientID)
}

// GetTheme returns the saved theme or appErrors.ErrCacheMiss.
func (r *RedisPreferenceRepository) GetTheme(ctx context.Context, clientID string) (models.Theme, error) {
	if r.client == nil {
		return "", appErrors.ErrCacheMiss
	}

	key := r.key(clientID)
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", appErrors.ErrCacheMiss
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}

	theme := models.Theme(raw)
	if !theme.Valid() {
		// Values written by older clients are treated as absent.
		r.logger.Warn("ignoring invalid stored theme", zap.String("key", key), zap.String("value", raw))
		return "", appErrors.ErrCacheMiss
	}
	return theme, nil
}

// SaveTheme stores theme for the client.
func (r *RedisPreferenceRepository) SaveTheme(ctx context.Context, clientID string, theme models.Theme) error {
	if r.client == nil {
		return nil
	}

	key := r.key(clientID)
	if err := r.client.Set(ctx, key, string(theme), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteTheme removes the saved theme.
func (r *RedisPreferenceRepository) DeleteTheme(ctx context.Context, clientID string) error {
	if r.client == nil {
		return nil
	}

	key := r.key(clientID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *RedisPreferenceRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection if present.
func (r *RedisPreferenceRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// MemoryPreferenceRepository keeps preferences in process memory.
type MemoryPreferenceRepository struct {
	prefix string

	mu     sync.RWMutex
	values map[string]models.Theme
}

// NewMemoryPreferenceRepository constructs an in-memory preference repository.
func NewMemoryPreferenceRepository(prefix string) *MemoryPreferenceRepository {
	return &MemoryPreferenceRepository{prefix: prefix, values: make(map[string]models.Theme)}
}

// GetTheme returns the saved theme or appErrors.ErrCacheMiss.
func (r *MemoryPreferenceRepository) GetTheme(_ context.Context, clientID string) (models.Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	theme, ok := r.values[preferenceKey(r.prefix, clientID)]
	if !ok {
		return "", appErrors.ErrCacheMiss
	}
	return theme, nil
}

// SaveTheme stores theme for the client.
func (r *MemoryPreferenceRepository) SaveTheme(_ context.Context, clientID string, theme models.Theme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[preferenceKey(r.prefix, clientID)] = theme
	return nil
}

// DeleteTheme removes the saved theme.
func (r *MemoryPreferenceRepository) DeleteTheme(_ context.Context, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, preferenceKey(r.prefix, clientID))
	return nil
}

func preferenceKey(prefix, clientID string) string {
	if prefix == "" {
		return clientID
	}
	return prefix + ":" + clientID
}
