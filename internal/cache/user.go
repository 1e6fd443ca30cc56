package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adoptly/adoptly/internal/model"
)

const (
	// userCachePrefix is the Redis key prefix for user profile cache.
	userCachePrefix = "user:profile:"
	// userCacheTTL is the time-to-live for cached user profiles.
	userCacheTTL = 5 * time.Minute
)

// cachedUser is the Redis representation of a user profile. The password
// hash is deliberately absent.
type cachedUser struct {
	ID             string           `json:"id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	Role           string           `json:"role"`
	Pets           []string         `json:"pets"`
	Documents      []model.Document `json:"documents,omitempty"`
	LastConnection time.Time        `json:"last_connection"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// GetUser retrieves a cached user profile by user ID.
// Returns nil on a cache miss.
func (c *Cache) GetUser(ctx context.Context, userID string) (*model.User, error) {
	data, err := c.client.Get(ctx, userCachePrefix+userID).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.User{
		ID:             cached.ID,
		FirstName:      cached.FirstName,
		LastName:       cached.LastName,
		Email:          cached.Email,
		Role:           cached.Role,
		Pets:           cached.Pets,
		Documents:      cached.Documents,
		LastConnection: cached.LastConnection,
		CreatedAt:      cached.CreatedAt,
		UpdatedAt:      cached.UpdatedAt,
	}, nil
}

// SetUser caches a user profile. The password hash is never written to the
// cache.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	cached := cachedUser{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Role:           user.Role,
		Pets:           user.Pets,
		Documents:      user.Documents,
		LastConnection: user.LastConnection,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal user profile: %w", err)
	}

	return c.client.Set(ctx, userCachePrefix+user.ID, data, userCacheTTL).Err()
}

// DeleteUser removes a cached user profile. Called whenever a profile
// mutation (update, adoption, document upload, deletion) would make the
// cached copy stale.
func (c *Cache) DeleteUser(ctx context.Context, userID string) error {
	return c.client.Del(ctx, userCachePrefix+userID).Err()
}
