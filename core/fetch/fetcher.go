// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests with the generator's identifying header and
// decodes the body to UTF-8 before it reaches the extractor.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/brochuregen/core"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "CompanyBrochureGenerator/1.0"

	// maxBodyBytes caps how much of a response is read into memory.
	maxBodyBytes = 20 << 20
)

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	log       zerolog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying client. Its timeout is kept unless
// WithTimeout is also given; c itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.log = log.With().Str("component", "fetch").Logger()
	}
}

// New creates an HTTPFetcher with a 10 second timeout.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.timeout > 0 && f.client.Timeout != f.timeout {
		c := *f.client
		c.Timeout = f.timeout
		f.client = &c
	}
	return f
}

// NormalizeURL prepends https:// when rawURL has no http(s) scheme.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// Fetch retrieves the page at url and returns its body decoded to UTF-8.
// Any transport or status failure is returned as a *core.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	url = NormalizeURL(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &core.FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug().Err(err).Str("url", url).Msg("Fetch failed")
		return nil, &core.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.log.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("Unexpected status")
		return nil, &core.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &core.FetchError{URL: url, Err: fmt.Errorf("reading response body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	html, encoding := Decode(body, contentType)

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Str("encoding", encoding).
		Dur("took", time.Since(start)).
		Msg("Fetched page")

	return &core.FetchResult{
		URL:         url,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Encoding:    encoding,
		HTML:        html,
	}, nil
}
