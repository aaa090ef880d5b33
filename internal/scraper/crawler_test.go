package scraper_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"olxradar/internal/monitoring"
	"olxradar/internal/scraper"
)

// One registry-backed metrics set for the whole test package.
var testMetrics = monitoring.NewMetrics()

// fetcherFunc adapts a function to the DocumentFetcher interface.
type fetcherFunc func(ctx context.Context, url string) (*goquery.Document, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	return f(ctx, url)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func adEntry(href string) string {
	return fmt.Sprintf(`<div class="css-1sw7q4x"><a class="css-rc5s2u" href="%s">ad</a></div>`, href)
}

func pagination(last int) string {
	var items strings.Builder
	for i := 1; i <= last; i++ {
		fmt.Fprintf(&items, `<li class="pagination-item">%d</li>`, i)
	}
	return `<ul class="pagination-list">` + items.String() + `</ul>`
}

func resultPage(paginationHTML string, entries ...string) string {
	return `<html><body>` + strings.Join(entries, "") + paginationHTML + `</body></html>`
}

func newCrawler(f scraper.DocumentFetcher) *scraper.PageCrawler {
	return scraper.NewPageCrawler(f, testScheme, testHost, zap.NewNop(), testMetrics)
}

func TestCrawl_RejectsForeignHostBeforeFetching(t *testing.T) {
	t.Parallel()

	fetched := 0
	c := newCrawler(fetcherFunc(func(_ context.Context, _ string) (*goquery.Document, error) {
		fetched++
		return nil, nil
	}))

	_, err := c.Crawl(context.Background(), "https://www.evil.example.com/d/q-iphone/")
	require.ErrorIs(t, err, scraper.ErrInvalidHost)
	assert.Zero(t, fetched, "no fetch may happen for a misconfigured target")
}

func TestCrawl_VisitsEveryPageAndStopsAtTheLast(t *testing.T) {
	t.Parallel()

	target := "https://www.olx.ro/d/q-iphone-13"
	pages := map[string]string{
		target + "/?page=1": resultPage(pagination(3), adEntry("/d/oferta/ad-one/")),
		target + "/?page=2": resultPage(pagination(3), adEntry("/d/oferta/ad-two/")),
		// Terminal page: no pagination control at all.
		target + "/?page=3": resultPage("", adEntry("/d/oferta/ad-three/")),
	}

	var fetched []string
	c := newCrawler(fetcherFunc(func(_ context.Context, url string) (*goquery.Document, error) {
		fetched = append(fetched, url)
		html, ok := pages[url]
		if !ok {
			t.Fatalf("unexpected fetch of %s", url)
		}
		return mustDoc(t, html), nil
	}))

	got, err := c.Crawl(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, []string{
		target + "/?page=1",
		target + "/?page=2",
		target + "/?page=3",
	}, fetched, "pages 1-3 in order, never page 4")
	assert.Equal(t, []string{
		"https://www.olx.ro/d/oferta/ad-one/",
		"https://www.olx.ro/d/oferta/ad-three/",
		"https://www.olx.ro/d/oferta/ad-two/",
	}, got)
}

func TestCrawl_FiltersNoiseAndDeduplicates(t *testing.T) {
	t.Parallel()

	target := "https://www.olx.ro/d/q-canapea"
	page := resultPage("",
		adEntry("/d/oferta/real-one/"),
		adEntry("https://www.olx.ro/d/oferta/real-two/"),
		adEntry("/d/oferta/real-one/"),                          // duplicate within traversal
		adEntry("/d/oferta/filler/?reason=extended-region"),     // query string: filler
		adEntry("https://www.evil.example.com/d/oferta/other/"), // external
		`<div class="css-1sw7q4x"><span>entry without anchor</span></div>`,
		`<div class="css-1sw7q4x"><a class="css-rc5s2u">anchor without href</a></div>`,
	)

	c := newCrawler(fetcherFunc(func(_ context.Context, _ string) (*goquery.Document, error) {
		return mustDoc(t, page), nil
	}))

	got, err := c.Crawl(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.olx.ro/d/oferta/real-one/",
		"https://www.olx.ro/d/oferta/real-two/",
	}, got)
}

func TestCrawl_FetchFailureEndsTraversalKeepingAccumulated(t *testing.T) {
	t.Parallel()

	target := "https://www.olx.ro/d/q-bicicleta"
	c := newCrawler(fetcherFunc(func(_ context.Context, url string) (*goquery.Document, error) {
		if strings.HasSuffix(url, "page=1") {
			return mustDoc(t, resultPage(pagination(5), adEntry("/d/oferta/first/"))), nil
		}
		return nil, fmt.Errorf("fetch %s: connection reset", url)
	}))

	got, err := c.Crawl(context.Background(), target)
	require.NoError(t, err, "a mid-pagination fetch failure is not an error")
	assert.Equal(t, []string{"https://www.olx.ro/d/oferta/first/"}, got)
}
