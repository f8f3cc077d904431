package repository

import (
	"context"
	"errors"
)

var (
	// ErrUnexpectedStatus is returned when a remote server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrBodyTooLarge is returned when a response exceeds the configured size limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// PageFetcher defines the contract for retrieving the raw HTML of a recipe page.
type PageFetcher interface {
	// FetchPage retrieves the document at url.
	FetchPage(ctx context.Context, url string) ([]byte, error)
}
