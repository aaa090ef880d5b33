package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PagesCrawled       prometheus.Counter
	ListingsDiscovered prometheus.Counter
	NewListings        prometheus.Counter
	DetailFailures     prometheus.Counter
	NotificationsSent  *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		PagesCrawled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olxradar_pages_crawled_total",
			Help: "The total number of search result pages fetched",
		}),
		ListingsDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olxradar_listings_discovered_total",
			Help: "The total number of canonical listing URLs collected from search pages",
		}),
		NewListings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olxradar_listings_new_total",
			Help: "The total number of listings not previously seen",
		}),
		DetailFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olxradar_detail_failures_total",
			Help: "The total number of listing detail pages dropped for fetch or extraction failure",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "olxradar_notifications_sent_total",
			Help: "The total number of notification deliveries by transport and outcome",
		}, []string{"transport", "outcome"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "olxradar_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'invalid_target', 'store_failed'
	}
}

func (m *Metrics) IncNotification(transport string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.NotificationsSent.WithLabelValues(transport, outcome).Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
