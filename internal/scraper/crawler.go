package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"olxradar/internal/monitoring"
)

// Structural locations of the data on OLX pages.
const (
	adContainerSelector = "div.css-1sw7q4x"
	adLinkSelector      = "a.css-rc5s2u"
	paginationSelector  = "ul.pagination-list li.pagination-item"
)

// ErrInvalidHost marks a search target configured for a host this crawler
// does not serve. It is a configuration error, detected before any fetch.
var ErrInvalidHost = errors.New("target host does not match the configured host")

// PageCrawler walks the result pages of one saved search and collects the
// canonical listing URLs found across all of them.
type PageCrawler struct {
	fetcher DocumentFetcher
	scheme  string
	host    string
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func NewPageCrawler(f DocumentFetcher, scheme, host string, l *zap.Logger, m *monitoring.Metrics) *PageCrawler {
	return &PageCrawler{fetcher: f, scheme: scheme, host: host, logger: l, metrics: m}
}

// Crawl traverses every result page of target and returns the canonical
// listing URLs, deduplicated within the traversal and sorted so that
// downstream notification numbering is deterministic. Pages are fetched
// sequentially: page N+1 is only requested once page N's pagination metadata
// is known. A page that fails to fetch or parse ends the traversal the same
// way running past the last page does, keeping whatever was accumulated.
func (c *PageCrawler) Crawl(ctx context.Context, target string) ([]string, error) {
	u, err := url.Parse(target)
	if err != nil || u.Host != c.host {
		return nil, fmt.Errorf("%q: %w", target, ErrInvalidHost)
	}

	links := make(map[string]struct{})
	currentPage := 1
	for {
		pageURL := fmt.Sprintf("%s/?page=%d", target, currentPage)
		doc, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			c.logger.Warn("result page unavailable, ending traversal",
				zap.String("url", pageURL), zap.Error(err))
			break
		}
		c.metrics.PagesCrawled.Inc()

		// Re-read the pagination control on every page; its absence means
		// this page is the last one.
		lastPage := lastPageNumber(doc)

		doc.Find(adContainerSelector).Each(func(_ int, entry *goquery.Selection) {
			href, ok := entry.Find(adLinkSelector).First().Attr("href")
			if !ok || href == "" {
				return
			}
			if !IsInternal(href, c.host) {
				return
			}
			if !IsRelevant(href) {
				return
			}
			links[Canonicalize(href, c.scheme, c.host)] = struct{}{}
		})

		if lastPage == 0 || currentPage >= lastPage {
			break
		}
		currentPage++
	}

	out := make([]string, 0, len(links))
	for link := range links {
		out = append(out, link)
	}
	sort.Strings(out)
	c.metrics.ListingsDiscovered.Add(float64(len(out)))
	return out, nil
}

// lastPageNumber reads the highest page number from the pagination control,
// or 0 when the control is absent or unreadable.
func lastPageNumber(doc *goquery.Document) int {
	items := doc.Find(paginationSelector)
	if items.Length() == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(items.Last().Text()))
	if err != nil {
		return 0
	}
	return n
}
