package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"olxradar/internal/headers"
)

// DocumentFetcher retrieves and parses one HTML page.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPFetcher implements DocumentFetcher via the Go http.Client, applying a
// rotating header profile to every request.
type HTTPFetcher struct {
	client  *http.Client
	rotator *headers.Rotator
}

func NewHTTPFetcher(timeout time.Duration, rotator *headers.Rotator) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		rotator: rotator,
	}
}

// Fetch issues a single GET and parses the body. Timeouts, connection
// failures and non-2xx responses all surface as errors; there is no retry.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	for k, v := range f.rotator.Pick() {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}
