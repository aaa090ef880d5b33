package radar

import (
	"context"
	"fmt"

	"olxradar/internal/storage"
)

// DedupFilter partitions crawled listing URLs into new versus already seen.
type DedupFilter struct {
	store storage.DedupStore
}

func NewDedupFilter(store storage.DedupStore) *DedupFilter {
	return &DedupFilter{store: store}
}

// FilterNew returns, in input order, the URLs the store has no record of.
// An empty input yields an empty result without touching the store.
func (f *DedupFilter) FilterNew(ctx context.Context, urls []string) ([]string, error) {
	var fresh []string
	for _, u := range urls {
		seen, err := f.store.Exists(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("check seen record for %s: %w", u, err)
		}
		if !seen {
			fresh = append(fresh, u)
		}
	}
	return fresh, nil
}
