package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/repository"
	"github.com/user/recipe-service/pkg/imaging"
	"github.com/user/recipe-service/pkg/metrics"
	"github.com/user/recipe-service/pkg/utils"
)

var ErrUnsupportedImageType = errors.New("unsupported image type")

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Image download outcomes, used as the metric label.
const (
	imageResultSuccess     = "success"
	imageResultUnsupported = "unsupported_type"
	imageResultFetchError  = "fetch_error"
	imageResultDecodeError = "decode_error"
	imageResultStoreError  = "store_error"
)

// ImageDownloader stores a local JPEG copy of a remote recipe image.
type ImageDownloader interface {
	// Download returns the local path of the stored copy, or "" when the
	// image could not be fetched, was not a JPEG, PNG or GIF, or could not
	// be stored.
	Download(ctx context.Context, imageURL string) string
}

type imageDownloaderUseCase struct {
	fetcher repository.ImageFetcher
	store   repository.ImageStore
	opts    imaging.Options
	logger  *zap.Logger
	metrics *metrics.Metrics
	newName func() (string, error)
}

// NewImageDownloader creates a new ImageDownloader use case.
func NewImageDownloader(
	fetcher repository.ImageFetcher,
	store repository.ImageStore,
	opts imaging.Options,
	logger *zap.Logger,
	m *metrics.Metrics,
) ImageDownloader {
	return &imageDownloaderUseCase{
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: m,
		newName: timeBasedName,
	}
}

// timeBasedName returns a version 1 UUID file name.
func timeBasedName() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	return id.String() + ".jpg", nil
}

func (uc *imageDownloaderUseCase) Download(ctx context.Context, imageURL string) string {
	if imageURL == "" {
		return ""
	}
	path, result, err := uc.download(ctx, imageURL)
	uc.metrics.IncImageDownload(result)
	if err != nil {
		uc.logger.Error("Could not download image",
			zap.String("url", imageURL),
			zap.String("result", result),
			zap.Error(err),
		)
		return ""
	}
	uc.logger.Debug("Stored recipe image", zap.String("url", imageURL), zap.String("path", path))
	return path
}

func (uc *imageDownloaderUseCase) download(ctx context.Context, imageURL string) (string, string, error) {
	encoded, err := utils.EncodePath(imageURL)
	if err != nil {
		return "", imageResultFetchError, fmt.Errorf("encode image URL: %w", err)
	}

	contentType, err := uc.fetcher.ContentType(ctx, encoded)
	if err != nil {
		return "", imageResultFetchError, err
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !allowedImageTypes[mediaType] {
		return "", imageResultUnsupported, fmt.Errorf("%w: %q", ErrUnsupportedImageType, contentType)
	}

	data, err := uc.fetcher.FetchImage(ctx, encoded)
	if err != nil {
		return "", imageResultFetchError, err
	}
	jpg, err := imaging.ToJPEG(data, uc.opts)
	if err != nil {
		return "", imageResultDecodeError, err
	}

	name, err := uc.newName()
	if err != nil {
		return "", imageResultStoreError, fmt.Errorf("generate file name: %w", err)
	}
	path, err := uc.store.Save(ctx, name, jpg)
	if err != nil {
		return "", imageResultStoreError, err
	}
	return path, imageResultSuccess, nil
}
