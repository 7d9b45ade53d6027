package expander

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for list expansion.
var (
	expandItemsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "expand_items_total",
		Help:      "List items processed by outcome (rendered, failed, stale)",
	}, []string{"outcome"})

	expandInFlight = promauto.With(metrics.Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Name:      "expand_inflight",
		Help:      "Detail fetches currently in flight",
	})
)

// DefaultMaxConcurrency caps in-flight detail fetches.
const DefaultMaxConcurrency = 10

// Config holds expander configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel detail fetches
	MaxConcurrency int
	// Timeout per detail fetch
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: DefaultMaxConcurrency,
		Timeout:        15 * time.Second,
	}
}

// DetailFetcher resolves one reference URL into a summary.
type DetailFetcher interface {
	FetchPokemon(ctx context.Context, url string) (pokedex.EntitySummary, error)
}

// Item is one resolved list entry.
type Item struct {
	// Index is the position of the reference in the request list.
	Index   int
	Ref     pokedex.Reference
	Summary pokedex.EntitySummary
}

// Guard reports whether results should still be rendered.
type Guard func() bool

// RenderFunc receives resolved items. Calls are serialized.
type RenderFunc func(Item)

// Result summarizes one expansion.
type Result struct {
	Requested int
	Rendered  int
	Failed    int
	Stale     int
}

// Expander fans detail fetches out to a worker pool.
type Expander struct {
	fetcher DetailFetcher
	config  Config
	logger  zerolog.Logger
}

// New creates a new expander
func New(fetcher DetailFetcher, config Config) *Expander {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Expander{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger(logging.ComponentExpander),
	}
}

type outcome struct {
	item Item
	err  error
}

// Expand fetches every reference and calls render once per resolved entry,
// in completion order. A nil guard always renders.
func (e *Expander) Expand(ctx context.Context, refs pokedex.ReferenceList, guard Guard, render RenderFunc) Result {
	res := Result{Requested: len(refs)}
	if len(refs) == 0 {
		return res
	}

	start := time.Now()

	workers := e.config.MaxConcurrency
	if workers > len(refs) {
		workers = len(refs)
	}

	queue := make(chan int, len(refs))
	for i := range refs {
		queue <- i
	}
	close(queue)

	outcomes := make(chan outcome, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go e.worker(ctx, refs, queue, outcomes, &wg, w)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single consumer: render calls never overlap.
	for o := range outcomes {
		if o.err != nil {
			res.Failed++
			expandItemsTotal.WithLabelValues("failed").Inc()
			e.logger.Warn().
				Err(o.err).
				Str("name", o.item.Ref.Name).
				Str("url", o.item.Ref.URL).
				Msg("List item fetch failed - skipping")
			continue
		}

		if guard != nil && !guard() {
			res.Stale++
			expandItemsTotal.WithLabelValues("stale").Inc()
			continue
		}

		render(o.item)
		res.Rendered++
		expandItemsTotal.WithLabelValues("rendered").Inc()
	}

	e.logger.Debug().
		Int("requested", res.Requested).
		Int("rendered", res.Rendered).
		Int("failed", res.Failed).
		Int("stale", res.Stale).
		Dur("duration", time.Since(start)).
		Msg("List expansion complete")

	return res
}

// worker resolves references from the queue
func (e *Expander) worker(ctx context.Context, refs pokedex.ReferenceList, queue <-chan int, outcomes chan<- outcome, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for idx := range queue {
		ref := refs[idx]
		item := Item{Index: idx, Ref: ref}

		if err := ctx.Err(); err != nil {
			outcomes <- outcome{item: item, err: err}
			continue
		}

		expandInFlight.Inc()
		itemCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		summary, err := e.fetcher.FetchPokemon(itemCtx, ref.URL)
		cancel()
		expandInFlight.Dec()

		if err != nil {
			e.logger.Debug().
				Err(err).
				Int("worker_id", workerID).
				Str("url", ref.URL).
				Msg("Detail fetch failed")
			outcomes <- outcome{item: item, err: err}
			continue
		}

		item.Summary = summary
		outcomes <- outcome{item: item}
	}
}
