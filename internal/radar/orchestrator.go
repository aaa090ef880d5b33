// Package radar sequences the discovery pipeline: crawl a saved search,
// filter out listings already seen, fetch detail for the new ones, batch a
// notification, and record the discoveries.
package radar

import (
	"context"

	"go.uber.org/zap"

	"olxradar/internal/monitoring"
	"olxradar/internal/notify"
	"olxradar/internal/scraper"
	"olxradar/internal/storage"
)

// Orchestrator runs the crawl → dedup → detail → notify → record sequence
// for each configured search target.
type Orchestrator struct {
	crawler    *scraper.PageCrawler
	details    *scraper.DetailFetcher
	filter     *DedupFilter
	store      storage.DedupStore
	batcher    *notify.Batcher
	transports []notify.Transport
	logger     *zap.Logger
	metrics    *monitoring.Metrics
}

func NewOrchestrator(
	crawler *scraper.PageCrawler,
	details *scraper.DetailFetcher,
	filter *DedupFilter,
	store storage.DedupStore,
	batcher *notify.Batcher,
	transports []notify.Transport,
	logger *zap.Logger,
	metrics *monitoring.Metrics,
) *Orchestrator {
	return &Orchestrator{
		crawler:    crawler,
		details:    details,
		filter:     filter,
		store:      store,
		batcher:    batcher,
		transports: transports,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run processes every target in order. No failure in one target stops the
// next: each is handled completely or abandoned wholesale.
func (o *Orchestrator) Run(ctx context.Context, targets []string) {
	for _, target := range targets {
		o.processTarget(ctx, target)
	}
}

func (o *Orchestrator) processTarget(ctx context.Context, target string) {
	found, err := o.crawler.Crawl(ctx, target)
	if err != nil {
		o.logger.Error("skipping target", zap.String("target", target), zap.Error(err))
		o.metrics.IncErrorsTotal("invalid_target")
		return
	}

	newCandidates, err := o.filter.FilterNew(ctx, found)
	if err != nil {
		o.logger.Error("dedup store unavailable, abandoning target",
			zap.String("target", target), zap.Error(err))
		o.metrics.IncErrorsTotal("store_failed")
		return
	}
	o.metrics.NewListings.Add(float64(len(newCandidates)))
	o.logger.Info("target crawled",
		zap.String("target", target),
		zap.Int("discovered", len(found)),
		zap.Int("new", len(newCandidates)))

	if len(newCandidates) > 0 {
		ads := o.details.FetchAll(ctx, newCandidates)
		if len(ads) > 0 {
			payload := o.batcher.Batch(target, ads)
			for _, transport := range o.transports {
				if err := transport.Send(ctx, payload); err != nil {
					o.logger.Error("notification delivery failed",
						zap.String("transport", transport.Name()), zap.Error(err))
					o.metrics.IncNotification(transport.Name(), false)
					continue
				}
				o.logger.Info("notification sent",
					zap.String("transport", transport.Name()),
					zap.Int("chunks", len(payload.Chunks)))
				o.metrics.IncNotification(transport.Name(), true)
			}
		}
	}

	// Record on discovery: every new candidate becomes seen now, even when
	// its detail page was unreachable this run. This caps reprocessing; only
	// listings never discovered stay eligible.
	for _, u := range newCandidates {
		if err := o.store.Insert(ctx, u); err != nil {
			o.logger.Error("failed to record listing as seen",
				zap.String("url", u), zap.Error(err))
			o.metrics.IncErrorsTotal("store_failed")
		}
	}
}
