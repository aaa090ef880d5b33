package scraper

import (
	"context"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"olxradar/internal/domain"
	"olxradar/internal/monitoring"
)

// Structural locations of the fields on an OLX listing page.
const (
	titleSelector       = "h1.css-1soizd2"
	priceSelector       = "h3.css-ddweki"
	descriptionSelector = "div.css-bgzo2k"
	sellerSelector      = "h4.css-1lcz6o7"
)

// DetailFetcher extracts structured ad detail from listing pages.
type DetailFetcher struct {
	fetcher DocumentFetcher
	workers int64
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func NewDetailFetcher(f DocumentFetcher, workers int, l *zap.Logger, m *monitoring.Metrics) *DetailFetcher {
	if workers < 1 {
		workers = 10
	}
	return &DetailFetcher{fetcher: f, workers: int64(workers), logger: l, metrics: m}
}

// FetchDetail returns the listing's detail, or nil when the page cannot be
// fetched or a required field is missing. Both cases collapse to "no detail
// available": the listing is dropped from this run's notification, nothing
// is raised to the caller.
func (d *DetailFetcher) FetchDetail(ctx context.Context, adURL string) *domain.AdDetail {
	d.logger.Info("processing listing", zap.String("url", adURL))

	doc, err := d.fetcher.Fetch(ctx, adURL)
	if err != nil {
		d.logger.Warn("listing detail unavailable", zap.String("url", adURL), zap.Error(err))
		d.metrics.DetailFailures.Inc()
		return nil
	}

	ad := &domain.AdDetail{
		Title:       strings.TrimSpace(doc.Find(titleSelector).First().Text()),
		Price:       strings.TrimSpace(doc.Find(priceSelector).First().Text()),
		Description: blockText(doc.Find(descriptionSelector).First()),
		Seller:      strings.TrimSpace(doc.Find(sellerSelector).First().Text()),
		URL:         adURL,
	}
	if ad.Title == "" || ad.Price == "" || ad.Description == "" {
		// A required field is missing. Not an error: the extraction simply
		// filters the listing out.
		d.metrics.DetailFailures.Inc()
		return nil
	}
	return ad
}

// FetchAll fetches details for urls with bounded parallelism. The result
// keeps the order of urls, not completion order, and listings without a
// usable detail are dropped.
func (d *DetailFetcher) FetchAll(ctx context.Context, urls []string) []domain.AdDetail {
	if len(urls) == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(d.workers)
	results := make([]*domain.AdDetail, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = d.FetchDetail(ctx, u)
		}(i, u)
	}
	wg.Wait()

	out := make([]domain.AdDetail, 0, len(urls))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// blockText renders a selection's child nodes as newline-separated trimmed
// text, preserving paragraph structure the way listing descriptions use it.
func blockText(sel *goquery.Selection) string {
	var parts []string
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		if t := strings.TrimSpace(child.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}
