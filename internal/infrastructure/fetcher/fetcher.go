package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"PizzaScanner/internal/ports"
)

// ErrUpstreamFetch matches every failure to download the menu page.
var ErrUpstreamFetch = errors.New("upstream fetch failed")

// UpstreamError describes a failed page download. Status is zero for transport errors.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrUpstreamFetch, e.Err)
	}
	return fmt.Sprintf("%s: status %d", ErrUpstreamFetch, e.Status)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamFetch
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Options configure the page fetcher.
type Options struct {
	URL       string
	UserAgent string
	// CacheTTL keeps the last downloaded page around; zero disables caching.
	CacheTTL time.Duration
	// RequestsPerMinute caps outbound requests; zero disables limiting.
	RequestsPerMinute int
}

// PageFetcher downloads the menu page with a single best-effort GET.
type PageFetcher struct {
	url    string
	client *resty.Client
	cache  *expirable.LRU[string, string]
	logger *slog.Logger
}

var _ ports.PageFetcher = (*PageFetcher)(nil)

// New builds a fetcher. The origin rejects requests without a user agent, so one is required.
func New(opts Options, logger *slog.Logger) (*PageFetcher, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("fetcher: url is required")
	}
	if opts.UserAgent == "" {
		return nil, fmt.Errorf("fetcher: user agent is required")
	}

	client := resty.New()
	client.SetHeader("User-Agent", opts.UserAgent)

	if opts.RequestsPerMinute > 0 {
		limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	f := &PageFetcher{
		url:    opts.URL,
		client: client,
		logger: logger,
	}
	if opts.CacheTTL > 0 {
		f.cache = expirable.NewLRU[string, string](1, nil, opts.CacheTTL)
	}
	return f, nil
}

// Fetch returns the page body. Only a 200 response counts as success.
func (f *PageFetcher) Fetch(ctx context.Context) (string, error) {
	if f.cache != nil {
		if page, ok := f.cache.Get(f.url); ok {
			f.debug("page cache hit", "url", f.url)
			return page, nil
		}
	}

	resp, err := f.client.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &UpstreamError{Status: resp.StatusCode()}
	}

	page := resp.String()
	f.debug("page fetched", "url", f.url, "bytes", len(page))
	if f.cache != nil {
		f.cache.Add(f.url, page)
	}
	return page, nil
}

func (f *PageFetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
