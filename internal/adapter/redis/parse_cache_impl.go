package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/recipe-service/internal/entity"
	"github.com/user/recipe-service/internal/repository"
	"github.com/user/recipe-service/pkg/utils"
)

const parsedURLPrefix = "parsed:"

// ParseCacheRepoImpl provides a concrete implementation for the ParseCacheRepository interface using Redis.
type ParseCacheRepoImpl struct {
	client *redis.Client
}

// NewParseCacheRepo creates a new instance of ParseCacheRepoImpl.
func NewParseCacheRepo(client *redis.Client) *ParseCacheRepoImpl {
	return &ParseCacheRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *ParseCacheRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", parsedURLPrefix, utils.HashURL(url))
}

// Get returns the cached recipe for url, or repository.ErrCacheMiss.
func (r *ParseCacheRepoImpl) Get(ctx context.Context, url string) (*entity.ExtractedRecipe, error) {
	raw, err := r.client.Get(ctx, r.generateKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var recipe entity.ExtractedRecipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		return nil, fmt.Errorf("decode cached recipe: %w", err)
	}
	return &recipe, nil
}

// Put stores recipe under url. SET with an expiry is atomic.
func (r *ParseCacheRepoImpl) Put(ctx context.Context, url string, recipe *entity.ExtractedRecipe, expiry time.Duration) error {
	raw, err := json.Marshal(recipe)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.generateKey(url), raw, expiry).Err()
}

// Ping reports whether Redis is reachable.
func (r *ParseCacheRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
