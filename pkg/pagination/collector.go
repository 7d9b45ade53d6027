package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for catalog collection.
var (
	catalogPagesTotal = promauto.With(metrics.Registry).NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "catalog_pages_total",
		Help:      "Total catalog pages fetched",
	})

	catalogItemsTotal = promauto.With(metrics.Registry).NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "catalog_items_total",
		Help:      "Total catalog entries collected",
	})
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 800

// Config holds collector configuration
type Config struct {
	// PageSize used by FetchAll callers that pass 0
	PageSize int
	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
		Timeout:  30 * time.Second,
	}
}

// PageFetcher fetches a single catalog page.
type PageFetcher interface {
	FetchPage(ctx context.Context, limit, offset int) (*pokedex.Page, error)
}

// Collector walks the catalog one page at a time.
type Collector struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewCollector creates a new collector
func NewCollector(fetcher PageFetcher, config Config) *Collector {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Collector{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger(logging.ComponentCollector),
	}
}

// PageSize returns the configured default page size.
func (c *Collector) PageSize() int {
	return c.config.PageSize
}

// FetchAll fetches every page starting at offset and returns the
// concatenated results. A pageSize of 0 selects the configured default.
// Any page failure aborts the walk and no partial results are returned.
func (c *Collector) FetchAll(ctx context.Context, pageSize, offset int) ([]pokedex.Reference, error) {
	if pageSize == 0 {
		pageSize = c.config.PageSize
	}
	if pageSize < 0 {
		return nil, fmt.Errorf("page size must be > 0 (got %d)", pageSize)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be >= 0 (got %d)", offset)
	}

	start := time.Now()
	var results []pokedex.Reference
	pages := 0

	for {
		pageCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		page, err := c.fetcher.FetchPage(pageCtx, pageSize, offset)
		cancel()

		if err != nil {
			c.logger.Warn().
				Err(err).
				Int("offset", offset).
				Int("page_size", pageSize).
				Int("pages", pages).
				Msg("Catalog page fetch failed - discarding partial results")
			return nil, fmt.Errorf("fetch catalog page at offset %d: %w", offset, err)
		}

		pages++
		catalogPagesTotal.Inc()
		results = append(results, page.Results...)

		c.logger.Debug().
			Int("offset", offset).
			Int("items", len(page.Results)).
			Msg("Catalog page fetched")

		if len(page.Results) < pageSize {
			break
		}
		offset += pageSize
	}

	catalogItemsTotal.Add(float64(len(results)))

	c.logger.Info().
		Int("pages", pages).
		Int("items", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Catalog fetch complete")

	return results, nil
}
