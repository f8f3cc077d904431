package repository

import (
	"context"

	"github.com/user/recipe-service/internal/entity"
)

// ParseHistoryRepository defines the interface for storing and listing parse attempts.
type ParseHistoryRepository interface {
	// Save stores a parse attempt and fills in its ID.
	Save(ctx context.Context, record *entity.ParseRecord) error
	// ListRecent retrieves the most recent parse attempts, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.ParseRecord, error)
}
