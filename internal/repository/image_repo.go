package repository

import (
	"context"
	"time"
)

// ImageFetcher defines the contract for retrieving remote images.
type ImageFetcher interface {
	// ContentType returns the declared Content-Type of url without downloading the body.
	ContentType(ctx context.Context, url string) (string, error)
	// FetchImage downloads the body at url.
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// ImageStore defines the interface for persisting downloaded images in the temporary files directory.
type ImageStore interface {
	// Save writes data under name and returns the path relative to the temp root, e.g. "tmp/<name>".
	Save(ctx context.Context, name string, data []byte) (string, error)
	// CleanOlderThan removes files whose modification time is older than maxAge and returns their names.
	CleanOlderThan(ctx context.Context, maxAge time.Duration) ([]string, error)
}
