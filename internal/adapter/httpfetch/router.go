package httpfetch

import (
	"context"
	"net/url"
	"strings"

	"github.com/user/recipe-service/internal/repository"
)

// Router sends pages of the listed domains, and their subdomains, to the
// browser fetcher and everything else to the direct one.
type Router struct {
	direct  repository.PageFetcher
	browser repository.PageFetcher
	domains []string
}

// NewRouter returns direct unchanged when there is no browser fetcher or
// no domain needs one.
func NewRouter(direct, browser repository.PageFetcher, domains []string) repository.PageFetcher {
	if browser == nil || len(domains) == 0 {
		return direct
	}
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			normalized = append(normalized, d)
		}
	}
	return &Router{direct: direct, browser: browser, domains: normalized}
}

func (r *Router) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	if r.needsBrowser(rawURL) {
		return r.browser.FetchPage(ctx, rawURL)
	}
	return r.direct.FetchPage(ctx, rawURL)
}

func (r *Router) needsBrowser(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range r.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
