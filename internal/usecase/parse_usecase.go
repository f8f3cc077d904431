package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/entity"
	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/repository"
	"github.com/user/recipe-service/pkg/metrics"
	"github.com/user/recipe-service/pkg/utils"
)

var (
	ErrInvalidURL      = errors.New("invalid URL")
	ErrNoParser        = errors.New("no parser found for URL")
	ErrHistoryDisabled = errors.New("parse history is disabled")
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	// unknownDomain labels parse metrics for URLs no extractor handles, so
	// the label set stays bounded by the registry.
	unknownDomain = "unknown"
)

// URLError reports the normalized URL an orchestration failure is about.
type URLError struct {
	URL string
	Err error
}

func (e *URLError) Error() string { return e.Err.Error() + ": " + e.URL }

func (e *URLError) Unwrap() error { return e.Err }

// Scraper runs one extractor over one page.
type Scraper interface {
	Scrape(ctx context.Context, ext parser.Extractor, pageURL string) entity.ExtractedRecipe
}

// RecipeParser defines the interface for turning recipe page URLs into
// recipes.
type RecipeParser interface {
	// ParseFromURL extracts the recipe at rawURL. A URL without a scheme is
	// treated as http. Only ErrInvalidURL and ErrNoParser, wrapped in a
	// *URLError, are returned; missing fields are left empty instead.
	ParseFromURL(ctx context.Context, rawURL string) (*entity.ExtractedRecipe, error)
	ListParsers(ctx context.Context) []parser.Descriptor
	RecentParses(ctx context.Context, limit int) ([]*entity.ParseRecord, error)
}

type recipeParserUseCase struct {
	registry *parser.Registry
	scraper  Scraper
	images   ImageDownloader
	cache    repository.ParseCacheRepository
	history  repository.ParseHistoryRepository
	cacheTTL time.Duration
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewRecipeParser creates a new RecipeParser use case. cache and history
// may be nil.
func NewRecipeParser(
	registry *parser.Registry,
	scraper Scraper,
	images ImageDownloader,
	cache repository.ParseCacheRepository,
	history repository.ParseHistoryRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) RecipeParser {
	return &recipeParserUseCase{
		registry: registry,
		scraper:  scraper,
		images:   images,
		cache:    cache,
		history:  history,
		cacheTTL: cacheTTL,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

func (uc *recipeParserUseCase) ParseFromURL(ctx context.Context, rawURL string) (*entity.ExtractedRecipe, error) {
	pageURL := utils.EnsureScheme(strings.TrimSpace(rawURL))
	if !uc.isWebURL(pageURL) {
		uc.logger.Info("Rejected invalid URL", zap.String("url", pageURL))
		return nil, &URLError{URL: pageURL, Err: ErrInvalidURL}
	}

	ext, ok := uc.registry.Find(pageURL)
	if !ok {
		domain, _ := parser.ExtractDomain(pageURL)
		uc.logger.Info("No parser found for URL", zap.String("url", pageURL), zap.String("domain", domain))
		uc.metrics.IncParse(unknownDomain, entity.ParseStatusNoParser)
		uc.record(ctx, &entity.ParseRecord{URL: pageURL, Domain: domain, Status: entity.ParseStatusNoParser})
		return nil, &URLError{URL: pageURL, Err: ErrNoParser}
	}
	domain := ext.Descriptor().Domain

	if recipe := uc.cached(ctx, pageURL); recipe != nil {
		uc.metrics.IncParse(domain, "cached")
		return recipe, nil
	}

	recipe := uc.scraper.Scrape(ctx, ext, pageURL)
	if recipe.Image != "" {
		recipe.Image = uc.images.Download(ctx, recipe.Image)
		if recipe.Image == "" {
			recipe.FailedFields = append(recipe.FailedFields, entity.FieldImage)
		}
	}
	uc.metrics.IncParse(domain, entity.ParseStatusSuccess)

	uc.logger.Info("Successfully extracted recipe",
		zap.String("url", pageURL),
		zap.String("domain", domain),
		zap.Strings("failed_fields", recipe.FailedFields),
	)

	// Degraded results are not cached so the next request tries again.
	if len(recipe.FailedFields) == 0 {
		uc.store(ctx, pageURL, &recipe)
	}
	uc.record(ctx, &entity.ParseRecord{
		URL:          pageURL,
		Domain:       domain,
		Title:        recipe.Title,
		FailedFields: recipe.FailedFields,
		Image:        recipe.Image,
		Status:       entity.ParseStatusSuccess,
	})
	return &recipe, nil
}

func (uc *recipeParserUseCase) isWebURL(pageURL string) bool {
	if err := uc.validate.Var(pageURL, "required,url"); err != nil {
		return false
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}

func (uc *recipeParserUseCase) cached(ctx context.Context, pageURL string) *entity.ExtractedRecipe {
	if uc.cache == nil {
		return nil
	}
	recipe, err := uc.cache.Get(ctx, pageURL)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			uc.logger.Warn("Failed to read parse cache", zap.String("url", pageURL), zap.Error(err))
		}
		return nil
	}
	return recipe
}

func (uc *recipeParserUseCase) store(ctx context.Context, pageURL string, recipe *entity.ExtractedRecipe) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Put(ctx, pageURL, recipe, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to write parse cache", zap.String("url", pageURL), zap.Error(err))
	}
}

// record saves a history row. Failures are logged and never reach the caller.
func (uc *recipeParserUseCase) record(ctx context.Context, rec *entity.ParseRecord) {
	if uc.history == nil {
		return
	}
	rec.ParsedAt = uc.now().UTC()
	if err := uc.history.Save(ctx, rec); err != nil {
		uc.logger.Warn("Failed to save parse history", zap.String("url", rec.URL), zap.Error(err))
	}
}

func (uc *recipeParserUseCase) ListParsers(_ context.Context) []parser.Descriptor {
	return uc.registry.Descriptors()
}

// RecentParses lists recent parse attempts. limit is clamped to 1..100;
// zero or less selects the default.
func (uc *recipeParserUseCase) RecentParses(ctx context.Context, limit int) ([]*entity.ParseRecord, error) {
	if uc.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return uc.history.ListRecent(ctx, min(limit, maxHistoryLimit))
}
