package taxonomy

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/model"
)

// Resolver resolves scientific names through the durable taxonomy cache.
// Cache entries are only ever added: a hit (including a negative one) is never
// re-fetched, a definitive miss is cached as nil, and a transport error writes
// nothing so the name is retried on the next run.
type Resolver struct {
	store  *datastore.Store
	client *Client
	delay  time.Duration
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewResolver creates a resolver with the configured request pacing.
func NewResolver(store *datastore.Store, client *Client, settings *conf.Settings, clock clockwork.Clock) *Resolver {
	return &Resolver{
		store:  store,
		client: client,
		delay:  settings.Taxonomy.RequestDelay,
		clock:  clock,
		logger: clientLogger,
	}
}

// Resolve returns the classification for a scientific name, consulting the
// cache first. On a cache miss it queries the service and updates the cache
// in memory; the caller decides when to persist. A nil classification with a
// nil error means the name has no match.
func (r *Resolver) Resolve(ctx context.Context, cache model.TaxonomyCache, scientificName string) (*model.Classification, error) {
	if entry, ok := cache.Lookup(scientificName); ok {
		return entry, nil
	}

	classification, definitiveMiss, err := r.client.Match(ctx, scientificName)
	if err != nil {
		return nil, err
	}

	key := model.CacheKey(scientificName)
	if definitiveMiss {
		cache[key] = nil
		return nil, nil
	}
	cache[key] = classification
	return classification, nil
}

// ResolveAll resolves every distinct scientific name appearing in the
// sightings, pacing requests by the configured delay, and persists the
// updated cache once at the end. Transport errors are logged and skipped so
// one flaky lookup cannot fail the whole batch. It returns the updated cache
// and the number of names actually fetched.
func (r *Resolver) ResolveAll(ctx context.Context, sightings []model.Sighting) (model.TaxonomyCache, int, error) {
	cache, err := r.store.LoadTaxonomyCache()
	if err != nil {
		return nil, 0, err
	}

	names := distinctScientificNames(sightings)
	r.logger.Info("resolving taxonomy", "unique_species", len(names))

	fetched := 0
	for _, name := range names {
		if _, ok := cache.Lookup(name); ok {
			continue
		}

		if fetched > 0 {
			r.clock.Sleep(r.delay)
		}

		classification, definitiveMiss, err := r.client.Match(ctx, name)
		if err != nil {
			r.logger.Warn("taxonomy lookup failed, will retry next run",
				"scientific_name", name, "error", err)
			continue
		}
		fetched++

		key := model.CacheKey(name)
		if definitiveMiss {
			cache[key] = nil
			continue
		}
		cache[key] = classification
	}

	if err := r.store.SaveTaxonomyCache(cache); err != nil {
		return nil, fetched, err
	}

	r.logger.Info("taxonomy cache updated", "fetched", fetched, "total", len(cache))
	return cache, fetched, nil
}

// distinctScientificNames collects the distinct trimmed scientific names from
// the sightings, sorted ascending for a deterministic fetch order.
func distinctScientificNames(sightings []model.Sighting) []string {
	seen := make(map[string]string)
	for i := range sightings {
		name := strings.TrimSpace(sightings[i].ScientificName)
		if name == "" {
			continue
		}
		key := model.CacheKey(name)
		if _, ok := seen[key]; !ok {
			seen[key] = name
		}
	}

	names := make([]string, 0, len(seen))
	for _, name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
