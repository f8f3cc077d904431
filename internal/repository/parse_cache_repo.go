package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/recipe-service/internal/entity"
)

// ErrCacheMiss is returned when no cached parse result exists for a URL.
var ErrCacheMiss = errors.New("parse cache miss")

// ParseCacheRepository defines the interface for caching finished parse results.
type ParseCacheRepository interface {
	// Get returns the cached recipe for url or ErrCacheMiss.
	Get(ctx context.Context, url string) (*entity.ExtractedRecipe, error)
	// Put caches recipe for url with the given expiry time.
	Put(ctx context.Context, url string, recipe *entity.ExtractedRecipe, expiry time.Duration) error
}
