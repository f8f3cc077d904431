// Package httpfetch retrieves recipe pages and images over plain HTTP.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/user/recipe-service/internal/proxy"
	"github.com/user/recipe-service/internal/repository"
)

const maxRedirects = 10

// Client implements repository.PageFetcher and repository.ImageFetcher.
type Client struct {
	http          *resty.Client
	agents        *proxy.Manager
	maxImageBytes int64
}

// NewClient bounds every request by timeout and rotates user agents and
// proxies through agents.
func NewClient(timeout time.Duration, maxImageBytes int64, agents *proxy.Manager) *Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	client.SetHeader("Accept-Language", "sv-SE,sv;q=0.9,en;q=0.8")
	if agents.HasProxies() {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = agents.Proxy
		client.SetTransport(transport)
	}
	return &Client{http: client, agents: agents, maxImageBytes: maxImageBytes}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if ua := c.agents.UserAgent(); ua != "" {
		req.SetHeader("User-Agent", ua)
	}
	return req
}

// FetchPage retrieves the document at url.
func (c *Client) FetchPage(ctx context.Context, url string) ([]byte, error) {
	res, err := c.request(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		Get(url)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s from %s", repository.ErrUnexpectedStatus, res.Status(), url)
	}
	return res.Body(), nil
}

// ContentType asks for the headers of url with HEAD. Servers that refuse
// HEAD get a GET whose body is discarded unread.
func (c *Client) ContentType(ctx context.Context, url string) (string, error) {
	res, err := c.request(ctx).Head(url)
	if err != nil {
		return "", err
	}
	if res.StatusCode() == http.StatusMethodNotAllowed || res.StatusCode() == http.StatusNotImplemented {
		res, err = c.request(ctx).SetDoNotParseResponse(true).Get(url)
		if err != nil {
			return "", err
		}
		res.RawBody().Close()
	}
	if res.IsError() {
		return "", fmt.Errorf("%w: %s from %s", repository.ErrUnexpectedStatus, res.Status(), url)
	}
	return res.Header().Get("Content-Type"), nil
}

// FetchImage downloads url, failing with repository.ErrBodyTooLarge past
// the configured limit.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	res, err := c.request(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, err
	}
	body := res.RawBody()
	defer body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s from %s", repository.ErrUnexpectedStatus, res.Status(), url)
	}
	data, err := io.ReadAll(io.LimitReader(body, c.maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxImageBytes {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", repository.ErrBodyTooLarge, c.maxImageBytes, url)
	}
	return data, nil
}
