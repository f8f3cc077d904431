package parser

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/entity"
	"github.com/user/recipe-service/internal/repository"
	"github.com/user/recipe-service/pkg/metrics"
)

type fieldFunc func(doc *goquery.Document) (string, error)

// Scraper fetches recipe pages and runs an extractor over them.
type Scraper struct {
	fetcher repository.PageFetcher
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewScraper(fetcher repository.PageFetcher, logger *zap.Logger, m *metrics.Metrics) *Scraper {
	return &Scraper{fetcher: fetcher, logger: logger, metrics: m}
}

// Scrape fetches pageURL and extracts every field with ext. A field whose
// extraction fails or panics is left empty and listed in FailedFields; the
// other fields are unaffected. A page that cannot be fetched yields a
// recipe with only Source set.
func (s *Scraper) Scrape(ctx context.Context, ext Extractor, pageURL string) entity.ExtractedRecipe {
	d := ext.Descriptor()
	recipe := entity.ExtractedRecipe{Source: pageURL}

	doc, err := s.document(ctx, d.Domain, pageURL)
	if err != nil {
		s.logger.Error("Failed to fetch recipe page",
			zap.String("url", pageURL),
			zap.String("domain", d.Domain),
			zap.Error(err),
		)
		for _, field := range entity.Fields {
			s.metrics.IncFieldFailure(d.Domain, field)
			recipe.FailedFields = append(recipe.FailedFields, field)
		}
		return recipe
	}

	fields := []struct {
		name string
		fn   fieldFunc
	}{
		{entity.FieldTitle, ext.Title},
		{entity.FieldImage, ext.Image},
		{entity.FieldIngredients, ext.Ingredients},
		{entity.FieldContents, ext.Contents},
		{entity.FieldPortions, ext.Portions},
	}
	for _, f := range fields {
		value, err := isolate(f.fn, doc)
		if err != nil {
			s.logger.Error("Could not extract recipe field",
				zap.String("field", f.name),
				zap.String("url", pageURL),
				zap.String("domain", d.Domain),
				zap.Error(err),
				zap.Stack("stack"),
			)
			s.metrics.IncFieldFailure(d.Domain, f.name)
			recipe.FailedFields = append(recipe.FailedFields, f.name)
			continue
		}
		recipe.Set(f.name, value)
	}
	return recipe
}

func (s *Scraper) document(ctx context.Context, domain, pageURL string) (*goquery.Document, error) {
	start := time.Now()
	body, err := s.fetcher.FetchPage(ctx, pageURL)
	s.metrics.ObserveFetch(domain, time.Since(start))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// isolate runs fn, turning a panic into an error.
func isolate(fn fieldFunc, doc *goquery.Document) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = "", fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return fn(doc)
}
