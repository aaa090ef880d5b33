package radar_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"olxradar/internal/domain"
	"olxradar/internal/monitoring"
	"olxradar/internal/notify"
	"olxradar/internal/radar"
	"olxradar/internal/scraper"
	"olxradar/internal/storage"
)

var testMetrics = monitoring.NewMetrics()

// fetcherFunc adapts a function to the DocumentFetcher interface.
type fetcherFunc func(ctx context.Context, url string) (*goquery.Document, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	return f(ctx, url)
}

// memStore is an in-memory DedupStore.
type memStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

var _ storage.DedupStore = (*memStore)(nil)

func newMemStore(urls ...string) *memStore {
	m := &memStore{seen: make(map[string]bool)}
	for _, u := range urls {
		m.seen[u] = true
	}
	return m
}

func (m *memStore) Exists(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[url], nil
}

func (m *memStore) Insert(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[url] = true
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

// recordingTransport captures payloads and optionally fails every send.
type recordingTransport struct {
	name     string
	err      error
	payloads []domain.NotificationPayload
}

func (r *recordingTransport) Name() string { return r.name }

func (r *recordingTransport) Send(_ context.Context, p domain.NotificationPayload) error {
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, p)
	return nil
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const (
	testHost   = "www.olx.ro"
	testTarget = "https://www.olx.ro/d/q-iphone-13/"
)

// searchPage renders a single terminal result page with the given listing hrefs.
func searchPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, href := range hrefs {
		b.WriteString(`<div class="css-1sw7q4x"><a class="css-rc5s2u" href="` + href + `">ad</a></div>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func detailPage(title, price, description string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if title != "" {
		b.WriteString(`<h1 class="css-1soizd2">` + title + `</h1>`)
	}
	if price != "" {
		b.WriteString(`<h3 class="css-ddweki">` + price + `</h3>`)
	}
	if description != "" {
		b.WriteString(`<div class="css-bgzo2k">` + description + `</div>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newOrchestrator(f scraper.DocumentFetcher, store storage.DedupStore, transports ...notify.Transport) *radar.Orchestrator {
	logger := zap.NewNop()
	return radar.NewOrchestrator(
		scraper.NewPageCrawler(f, "https", testHost, logger, testMetrics),
		scraper.NewDetailFetcher(f, 10, logger, testMetrics),
		radar.NewDedupFilter(store),
		store,
		notify.NewBatcher(4000),
		transports,
		logger,
		testMetrics,
	)
}

func TestRun_NotifiesAndRecordsNewListings(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testTarget + "/?page=1":             searchPage("/d/oferta/ad-a/", "/d/oferta/ad-b/"),
		"https://www.olx.ro/d/oferta/ad-a/": detailPage("Ad A", "100 lei", "First one."),
		"https://www.olx.ro/d/oferta/ad-b/": detailPage("Ad B", "200 lei", "Second one."),
	}
	fetcher := fetcherFunc(func(_ context.Context, url string) (*goquery.Document, error) {
		html, ok := pages[url]
		require.True(t, ok, "unexpected fetch of %s", url)
		return mustDoc(t, html), nil
	})

	store := newMemStore()
	transport := &recordingTransport{name: "test"}
	newOrchestrator(fetcher, store, transport).Run(context.Background(), []string{testTarget})

	require.Len(t, transport.payloads, 1)
	payload := transport.payloads[0]
	assert.Equal(t, "2 new listings for 'Iphone 13'", payload.Subject)
	require.Len(t, payload.Chunks, 1)
	assert.Contains(t, payload.Chunks[0], "1. Ad A (100 lei)")
	assert.Contains(t, payload.Chunks[0], "2. Ad B (200 lei)")

	for _, u := range []string{"https://www.olx.ro/d/oferta/ad-a/", "https://www.olx.ro/d/oferta/ad-b/"} {
		seen, err := store.Exists(context.Background(), u)
		require.NoError(t, err)
		assert.True(t, seen, "%s must be recorded", u)
	}
}

// A listing whose detail page is missing a required field produces no
// notification but is still recorded as seen.
func TestRun_UnprocessableListingIsStillRecorded(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testTarget + "/?page=1":                  searchPage("/d/oferta/ad-broken/"),
		"https://www.olx.ro/d/oferta/ad-broken/": detailPage("Ad", "", "No price here."),
	}
	fetcher := fetcherFunc(func(_ context.Context, url string) (*goquery.Document, error) {
		return mustDoc(t, pages[url]), nil
	})

	store := newMemStore()
	transport := &recordingTransport{name: "test"}
	newOrchestrator(fetcher, store, transport).Run(context.Background(), []string{testTarget})

	assert.Empty(t, transport.payloads, "no surviving detail means no notification")
	seen, err := store.Exists(context.Background(), "https://www.olx.ro/d/oferta/ad-broken/")
	require.NoError(t, err)
	assert.True(t, seen, "record on discovery, not on success")
}

func TestRun_NoNewCandidatesMakesNoTransportCalls(t *testing.T) {
	t.Parallel()

	var fetches []string
	fetcher := fetcherFunc(func(_ context.Context, url string) (*goquery.Document, error) {
		fetches = append(fetches, url)
		return mustDoc(t, searchPage("/d/oferta/ad-known/")), nil
	})

	store := newMemStore("https://www.olx.ro/d/oferta/ad-known/")
	transport := &recordingTransport{name: "test"}
	newOrchestrator(fetcher, store, transport).Run(context.Background(), []string{testTarget})

	assert.Empty(t, transport.payloads)
	assert.Equal(t, []string{testTarget + "/?page=1"}, fetches,
		"only the search page is fetched, no detail fetches")
}

func TestRun_TransportFailureDoesNotBlockOthersOrRecording(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testTarget + "/?page=1":             searchPage("/d/oferta/ad-a/"),
		"https://www.olx.ro/d/oferta/ad-a/": detailPage("Ad A", "100 lei", "Fine."),
	}
	fetcher := fetcherFunc(func(_ context.Context, url string) (*goquery.Document, error) {
		return mustDoc(t, pages[url]), nil
	})

	store := newMemStore()
	failing := &recordingTransport{name: "email", err: errors.New("smtp down")}
	working := &recordingTransport{name: "telegram"}
	newOrchestrator(fetcher, store, failing, working).Run(context.Background(), []string{testTarget})

	assert.Len(t, working.payloads, 1, "second transport still delivers")
	seen, err := store.Exists(context.Background(), "https://www.olx.ro/d/oferta/ad-a/")
	require.NoError(t, err)
	assert.True(t, seen, "transport failure does not roll back the write-back")
}

func TestRun_InvalidTargetIsSkippedAndTheNextProcessed(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		testTarget + "/?page=1":             searchPage("/d/oferta/ad-a/"),
		"https://www.olx.ro/d/oferta/ad-a/": detailPage("Ad A", "100 lei", "Fine."),
	}
	fetcher := fetcherFunc(func(_ context.Context, url string) (*goquery.Document, error) {
		html, ok := pages[url]
		require.True(t, ok, "unexpected fetch of %s", url)
		return mustDoc(t, html), nil
	})

	store := newMemStore()
	transport := &recordingTransport{name: "test"}
	newOrchestrator(fetcher, store, transport).Run(context.Background(),
		[]string{"https://www.evil.example.com/d/q-iphone/", testTarget})

	require.Len(t, transport.payloads, 1, "the valid target is still processed")
}
