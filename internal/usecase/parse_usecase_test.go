package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/adapter/filestore"
	"github.com/user/recipe-service/internal/adapter/httpfetch"
	"github.com/user/recipe-service/internal/entity"
	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
	"github.com/user/recipe-service/internal/parser/sites"
	"github.com/user/recipe-service/internal/proxy"
	"github.com/user/recipe-service/internal/repository"
	"github.com/user/recipe-service/pkg/imaging"
	"github.com/user/recipe-service/pkg/metrics"
)

// sampleExtractor reads the minimal recipe markup served in these tests.
type sampleExtractor struct{ text htmltext.Options }

func (sampleExtractor) Descriptor() parser.Descriptor {
	return parser.Descriptor{Domain: "sample.se", Name: "Sample", Address: "https://sample.se/recept/"}
}

func (e sampleExtractor) Title(doc *goquery.Document) (string, error) {
	sel, err := parser.First(doc.Selection, "h1")
	if err != nil {
		return "", err
	}
	return htmltext.Text(sel), nil
}

func (e sampleExtractor) Image(doc *goquery.Document) (string, error) {
	img, err := parser.First(doc.Selection, ".hero img")
	if err != nil {
		return "", err
	}
	return parser.Attr(img, "src")
}

func (e sampleExtractor) Ingredients(doc *goquery.Document) (string, error) {
	sel, err := parser.First(doc.Selection, ".ingredients")
	if err != nil {
		return "", err
	}
	return e.text.Convert(sel), nil
}

func (e sampleExtractor) Contents(doc *goquery.Document) (string, error) {
	sel, err := parser.First(doc.Selection, ".steps ol")
	if err != nil {
		return "", err
	}
	return htmltext.CollapseIndent(e.text.Convert(sel)), nil
}

func (e sampleExtractor) Portions(doc *goquery.Document) (string, error) {
	sel, err := parser.First(doc.Selection, ".portions")
	if err != nil {
		return "", err
	}
	return htmltext.Text(sel), nil
}

const soupPage = `<html><body>
<h1>Soup</h1>
<div class="hero"><img src="%IMAGE%"></div>
<ul class="ingredients"><li>1 l vatten</li><li>2 morötter</li></ul>
<div class="steps"><ol>
  <li>Skala morötterna.</li>
  <li>Koka i vattnet.</li>
  <li>Mixa slätt.</li>
</ol></div>
<span class="portions">4 portioner</span>
</body></html>`

type pageFetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f pageFetcherFunc) FetchPage(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

type stubCache struct {
	entries map[string]*entity.ExtractedRecipe
	puts    int
}

func (c *stubCache) Get(_ context.Context, url string) (*entity.ExtractedRecipe, error) {
	if r, ok := c.entries[url]; ok {
		return r, nil
	}
	return nil, repository.ErrCacheMiss
}

func (c *stubCache) Put(_ context.Context, url string, recipe *entity.ExtractedRecipe, _ time.Duration) error {
	c.puts++
	c.entries[url] = recipe
	return nil
}

type stubHistory struct {
	saved []*entity.ParseRecord
	err   error
	limit int
}

func (h *stubHistory) Save(_ context.Context, rec *entity.ParseRecord) error {
	h.saved = append(h.saved, rec)
	return h.err
}

func (h *stubHistory) ListRecent(_ context.Context, limit int) ([]*entity.ParseRecord, error) {
	h.limit = limit
	return h.saved, nil
}

type countingScraper struct {
	Scraper
	calls int
}

func (s *countingScraper) Scrape(ctx context.Context, ext parser.Extractor, pageURL string) entity.ExtractedRecipe {
	s.calls++
	return s.Scraper.Scrape(ctx, ext, pageURL)
}

type fixture struct {
	parser  RecipeParser
	scraper *countingScraper
	cache   *stubCache
	history *stubHistory
	fs      afero.Fs
	pageURL string
}

// newFixture wires the real scraper, image downloader and HTTP client
// against a test server that serves the soup page and its picture.
func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()
	png := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/soup.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	agents, err := proxy.NewManager(nil, []string{"recipe-test-agent"})
	require.NoError(t, err)
	client := httpfetch.NewClient(5*time.Second, 1<<20, agents)

	page := strings.ReplaceAll(soupPage, "%IMAGE%", srv.URL+"/soup.png")
	pages := pageFetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		if strings.Contains(url, "sample.se") {
			return []byte(page), nil
		}
		return nil, repository.ErrUnexpectedStatus
	})

	registry, err := parser.NewRegistry(append(sites.All(), sampleExtractor{})...)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	store, err := filestore.New(fs, tmpDir, "tmp")
	require.NoError(t, err)

	f := &fixture{
		scraper: &countingScraper{Scraper: parser.NewScraper(pages, zap.NewNop(), nil)},
		history: &stubHistory{},
		fs:      fs,
		pageURL: "https://sample.se/recept/soup",
	}
	var cache repository.ParseCacheRepository
	if withCache {
		f.cache = &stubCache{entries: map[string]*entity.ExtractedRecipe{}}
		cache = f.cache
	}
	images := NewImageDownloader(client, store, imaging.Options{Quality: 85}, zap.NewNop(), nil)
	f.parser = NewRecipeParser(registry, f.scraper, images, cache, f.history, time.Hour, zap.NewNop(), nil)
	return f
}

func TestParseFromURL_Soup(t *testing.T) {
	f := newFixture(t, false)

	recipe, err := f.parser.ParseFromURL(context.Background(), f.pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Soup", recipe.Title)
	assert.Equal(t, "* 1 l vatten\n* 2 morötter", recipe.Ingredients)
	assert.Equal(t, "1. Skala morötterna.\n2. Koka i vattnet.\n3. Mixa slätt.", recipe.Contents)
	assert.Equal(t, "4 portioner", recipe.Portions)
	assert.Equal(t, f.pageURL, recipe.Source)
	assert.Regexp(t, tmpJPEG, recipe.Image)
	assert.Empty(t, recipe.FailedFields)

	exists, err := afero.Exists(f.fs, tmpDir+"/"+strings.TrimPrefix(recipe.Image, "tmp/"))
	require.NoError(t, err)
	assert.True(t, exists)

	require.Len(t, f.history.saved, 1)
	rec := f.history.saved[0]
	assert.Equal(t, entity.ParseStatusSuccess, rec.Status)
	assert.Equal(t, "sample.se", rec.Domain)
	assert.Equal(t, "Soup", rec.Title)
	assert.False(t, rec.ParsedAt.IsZero())
}

func TestParseFromURL_NoParser(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.parser.ParseFromURL(context.Background(), "www.example-recipes.test/recipe/123")

	require.ErrorIs(t, err, ErrNoParser)
	var urlErr *URLError
	require.True(t, errors.As(err, &urlErr))
	assert.Equal(t, "http://www.example-recipes.test/recipe/123", urlErr.URL)
	assert.Equal(t, 0, f.scraper.calls)

	require.Len(t, f.history.saved, 1)
	assert.Equal(t, entity.ParseStatusNoParser, f.history.saved[0].Status)
	assert.Equal(t, "example-recipes.test", f.history.saved[0].Domain)
}

func TestParseFromURL_NoParserMetricsUseFixedLabel(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	registry, err := parser.NewRegistry(sites.All()...)
	require.NoError(t, err)
	history := &stubHistory{}
	uc := NewRecipeParser(registry, nil, nil, nil, history, 0, zap.NewNop(), m)

	for _, raw := range []string{"http://mat1.com/x", "http://mat2.com/x", "https://recept.nu/y"} {
		_, err := uc.ParseFromURL(context.Background(), raw)
		require.ErrorIs(t, err, ErrNoParser)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.ParsesTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ParsesTotal.WithLabelValues("unknown", entity.ParseStatusNoParser)))
	require.Len(t, history.saved, 3)
	assert.Equal(t, "recept.nu", history.saved[2].Domain)
}

func TestParseFromURL_InvalidURL(t *testing.T) {
	f := newFixture(t, false)

	for raw, normalized := range map[string]string{
		"":          "http://",
		"not a url": "http://not a url",
		"  ":        "http://",
	} {
		_, err := f.parser.ParseFromURL(context.Background(), raw)
		require.ErrorIs(t, err, ErrInvalidURL, raw)
		var urlErr *URLError
		require.True(t, errors.As(err, &urlErr))
		assert.Equal(t, normalized, urlErr.URL)
	}
	assert.Empty(t, f.history.saved)
}

func TestParseFromURL_UsesCache(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	first, err := f.parser.ParseFromURL(ctx, f.pageURL)
	require.NoError(t, err)
	second, err := f.parser.ParseFromURL(ctx, f.pageURL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.scraper.calls)
	assert.Equal(t, 1, f.cache.puts)
}

func TestParseFromURL_DegradedResultIsNotCached(t *testing.T) {
	f := newFixture(t, true)
	url := "https://www.ica.se/recept/saknas/" // page fetch fails

	recipe, err := f.parser.ParseFromURL(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, url, recipe.Source)
	assert.Equal(t, entity.Fields, recipe.FailedFields)
	assert.Equal(t, 0, f.cache.puts)
}

func TestParseFromURL_HistoryFailureIsIgnored(t *testing.T) {
	f := newFixture(t, false)
	f.history.err = errors.New("database is down")

	recipe, err := f.parser.ParseFromURL(context.Background(), f.pageURL)
	require.NoError(t, err)
	assert.Equal(t, "Soup", recipe.Title)
}

func TestListParsers(t *testing.T) {
	f := newFixture(t, false)

	got := f.parser.ListParsers(context.Background())

	require.Len(t, got, len(sites.All())+1)
	assert.Equal(t, parser.Descriptor{Domain: "alltommat.se", Name: "Allt om Mat", Address: "https://alltommat.se/recept/"}, got[0])
	assert.Equal(t, "sample.se", got[len(got)-1].Domain)
}

func TestRecentParses(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.parser.RecentParses(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryLimit, f.history.limit)

	_, err = f.parser.RecentParses(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, maxHistoryLimit, f.history.limit)

	disabled := NewRecipeParser(nil, nil, nil, nil, nil, 0, zap.NewNop(), nil)
	_, err = disabled.RecentParses(ctx, 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}
