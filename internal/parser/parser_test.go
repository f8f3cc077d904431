package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/user/recipe-service/internal/entity"
)

type stubExtractor struct {
	desc        Descriptor
	title       func(*goquery.Document) (string, error)
	image       func(*goquery.Document) (string, error)
	ingredients func(*goquery.Document) (string, error)
	contents    func(*goquery.Document) (string, error)
	portions    func(*goquery.Document) (string, error)
}

func value(s string) func(*goquery.Document) (string, error) {
	return func(*goquery.Document) (string, error) { return s, nil }
}

func (e *stubExtractor) Descriptor() Descriptor { return e.desc }
func (e *stubExtractor) Title(d *goquery.Document) (string, error)       { return e.title(d) }
func (e *stubExtractor) Image(d *goquery.Document) (string, error)       { return e.image(d) }
func (e *stubExtractor) Ingredients(d *goquery.Document) (string, error) { return e.ingredients(d) }
func (e *stubExtractor) Contents(d *goquery.Document) (string, error)    { return e.contents(d) }
func (e *stubExtractor) Portions(d *goquery.Document) (string, error)    { return e.portions(d) }

func newStub(domain, name string) *stubExtractor {
	return &stubExtractor{
		desc:        Descriptor{Domain: domain, Name: name, Address: "https://www." + domain + "/"},
		title:       value("Soppa"),
		image:       value("https://www." + domain + "/soppa.jpg"),
		ingredients: value("* vatten"),
		contents:    value("1. Koka."),
		portions:    value("4"),
	}
}

type stubFetcher struct {
	body string
	err  error
}

func (f stubFetcher) FetchPage(context.Context, string) ([]byte, error) {
	return []byte(f.body), f.err
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		url    string
		domain string
		ok     bool
	}{
		{"https://www.ica.se/recept/morotssoppa-722533/", "ica.se", true},
		{"http://mittkok.expressen.se/recept/kottbullar", "expressen.se", true},
		{"www.koket.se/recept", "koket.se", true},
		{"arla.se", "arla.se", true},
		{"HTTPS://WWW.COOP.SE/recept/x", "coop.se", true},
		{"https://www.tasteline.com:443/recept/?id=1", "tasteline.com", true},
		{"http://www.example-recipes.test/recipe/123", "example-recipes.test", true},
		{"https://recepten.se?x=1", "recepten.se", true},
		{"not a url", "", false},
		{"http://localhost/recept", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			domain, ok := ExtractDomain(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.domain, domain)
		})
	}
}

func TestNewRegistry(t *testing.T) {
	ica, arla := newStub("ica.se", "ICA"), newStub("arla.se", "Arla")

	r, err := NewRegistry(ica, arla)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []Descriptor{ica.Descriptor(), arla.Descriptor()}, r.Descriptors())

	got, ok := r.Find("https://www.arla.se/recept/kladdkaka/")
	require.True(t, ok)
	assert.Same(t, arla, got)

	_, ok = r.Find("https://www.example-recipes.test/recipe/123")
	assert.False(t, ok)
}

func TestNewRegistry_DuplicateDomain(t *testing.T) {
	_, err := NewRegistry(newStub("ica.se", "ICA"), newStub("ica.se", "ICA again"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateDomain)
}

func TestNewRegistry_InvalidDescriptor(t *testing.T) {
	_, err := NewRegistry(newStub("www.ica.se", "ICA"))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	var descErr *DescriptorError
	require.True(t, errors.As(err, &descErr))
	assert.Equal(t, "www.ica.se", descErr.Descriptor.Domain)
}

func TestNewRegistryLenient_SkipsBadEntries(t *testing.T) {
	good := newStub("koket.se", "Köket")
	r, err := NewRegistryLenient(nil, newStub("", "Nameless"), good, newStub("koket.se", "Copy"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	assert.ErrorIs(t, err, ErrDuplicateDomain)
	require.NotNil(t, r)
	assert.Equal(t, []Descriptor{good.Descriptor()}, r.Descriptors())
}

func TestRegistry_ExtractorsReturnsCopy(t *testing.T) {
	r, err := NewRegistry(newStub("ica.se", "ICA"))
	require.NoError(t, err)

	exts := r.Extractors()
	exts[0] = nil
	assert.NotNil(t, r.Extractors()[0])
}

func newObservedScraper(f stubFetcher) (*Scraper, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewScraper(f, zap.New(core), nil), logs
}

func TestScraper_Scrape(t *testing.T) {
	s, logs := newObservedScraper(stubFetcher{body: "<html><body><h1>Soppa</h1></body></html>"})

	got := s.Scrape(context.Background(), newStub("ica.se", "ICA"), "https://www.ica.se/recept/soppa/")

	assert.Equal(t, entity.ExtractedRecipe{
		Title:       "Soppa",
		Image:       "https://www.ica.se/soppa.jpg",
		Ingredients: "* vatten",
		Contents:    "1. Koka.",
		Portions:    "4",
		Source:      "https://www.ica.se/recept/soppa/",
	}, got)
	assert.Equal(t, 0, logs.Len())
}

func TestScraper_IsolatesFieldFailures(t *testing.T) {
	ext := newStub("ica.se", "ICA")
	ext.image = func(doc *goquery.Document) (string, error) {
		_, err := First(doc.Selection, ".recipe-image-square__image")
		return "", err
	}
	ext.portions = func(*goquery.Document) (string, error) {
		var sel *goquery.Selection
		return sel.Text(), nil // nil selection panics
	}
	s, logs := newObservedScraper(stubFetcher{body: "<html><body></body></html>"})

	got := s.Scrape(context.Background(), ext, "https://www.ica.se/recept/soppa/")

	assert.Equal(t, "Soppa", got.Title)
	assert.Equal(t, "", got.Image)
	assert.Equal(t, "* vatten", got.Ingredients)
	assert.Equal(t, "1. Koka.", got.Contents)
	assert.Equal(t, "", got.Portions)
	assert.Equal(t, []string{entity.FieldImage, entity.FieldPortions}, got.FailedFields)

	entries := logs.FilterMessage("Could not extract recipe field").All()
	require.Len(t, entries, 2)
	first := entries[0].ContextMap()
	assert.Equal(t, "image", first["field"])
	assert.Equal(t, "ica.se", first["domain"])
	assert.Equal(t, "https://www.ica.se/recept/soppa/", first["url"])
	assert.Contains(t, first["error"], ErrElementNotFound.Error())
	assert.Contains(t, first, "stack")
	assert.Contains(t, entries[1].ContextMap()["error"], "extractor panic")
}

func TestScraper_FetchFailureDegradesEveryField(t *testing.T) {
	s, logs := newObservedScraper(stubFetcher{err: errors.New("connection refused")})

	got := s.Scrape(context.Background(), newStub("ica.se", "ICA"), "https://www.ica.se/recept/soppa/")

	assert.Equal(t, "https://www.ica.se/recept/soppa/", got.Source)
	assert.Empty(t, got.Title)
	assert.Equal(t, entity.Fields, got.FailedFields)
	assert.Equal(t, 1, logs.FilterMessage("Failed to fetch recipe page").Len())
}

func TestSelectionHelpers(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="hero" style="background-image: url('//images.ica.se/soppa.jpg')"><img src=" /a.jpg "></div>`))
	require.NoError(t, err)

	img, err := First(doc.Selection, ".hero img")
	require.NoError(t, err)
	src, err := Attr(img, "src")
	require.NoError(t, err)
	assert.Equal(t, "/a.jpg", src)

	_, err = Attr(img, "alt")
	assert.ErrorIs(t, err, ErrElementNotFound)

	_, err = Find(doc.Selection, ".missing")
	assert.ErrorIs(t, err, ErrElementNotFound)
	assert.Contains(t, err.Error(), ".missing")

	style, _ := doc.Find(".hero").Attr("style")
	bg, err := BackgroundImage(style)
	require.NoError(t, err)
	assert.Equal(t, "//images.ica.se/soppa.jpg", bg)

	abs, err := ResolveURL("https://www.ica.se/recept/", bg)
	require.NoError(t, err)
	assert.Equal(t, "https://images.ica.se/soppa.jpg", abs)

	_, err = ResolveURL("https://www.ica.se/", "")
	assert.ErrorIs(t, err, ErrElementNotFound)
}
