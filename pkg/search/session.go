package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/endpoint"
	"github.com/Sternrassler/pokedex-client/pkg/expander"
	"github.com/Sternrassler/pokedex-client/pkg/generation"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/Sternrassler/pokedex-client/pkg/presenter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for searches.
var (
	searchesTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "searches_total",
		Help:      "Total searches by context and outcome",
	}, []string{"context", "outcome"})

	searchDuration = promauto.With(metrics.Registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Name:      "search_duration_seconds",
		Help:      "Search duration in seconds by context",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"context"})
)

// RandomMax is the highest id picked by Random.
const RandomMax = 898

// ContextAll labels the outcome of All. It is not a valid search context.
const ContextAll pokedex.SearchContext = "all"

// AllHeading heads the card grid rendered by All.
const AllHeading = "All Pokémon"

// Fetcher is the subset of the fetch gateway a Session needs.
type Fetcher interface {
	expander.DetailFetcher
	pagination.PageFetcher
	FetchReferences(ctx context.Context, url string) (pokedex.ReferenceList, error)
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	Generations    generation.Counter
	Spinner        Spinner
	MaxConcurrency int
	PageSize       int

	// IntN returns a value in [0, n); used by Random.
	IntN func(n int) int
}

// Outcome describes a finished search.
type Outcome struct {
	Generation uint64                `json:"generation"`
	Context    pokedex.SearchContext `json:"context"`
	Term       string                `json:"term"`
	Detail     *presenter.Display    `json:"detail,omitempty"`
	Requested  int                   `json:"requested"`
	Loaded     int                   `json:"loaded"`
	Failed     int                   `json:"failed"`

	// Stale is set when a newer search or a clear took over before this
	// one settled.
	Stale bool `json:"stale"`
}

// Session runs searches against one display surface.
type Session struct {
	resolver    *endpoint.Resolver
	fetcher     Fetcher
	renderer    Renderer
	expander    *expander.Expander
	collector   *pagination.Collector
	generations generation.Counter
	spinner     *spinnerGate
	intN        func(int) int
	logger      zerolog.Logger

	// beginMu orders generation hand-out with the matching surface reset.
	beginMu sync.Mutex

	mu      sync.Mutex
	state   State
	owner   uint64
	context pokedex.SearchContext
	term    string
}

// NewSession creates a session rendering into renderer.
func NewSession(resolver *endpoint.Resolver, fetcher Fetcher, renderer Renderer, opts Options) *Session {
	if opts.Generations == nil {
		opts.Generations = generation.NewMemoryCounter()
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}

	expCfg := expander.DefaultConfig()
	if opts.MaxConcurrency > 0 {
		expCfg.MaxConcurrency = opts.MaxConcurrency
	}
	pageCfg := pagination.DefaultConfig()
	if opts.PageSize > 0 {
		pageCfg.PageSize = opts.PageSize
	}

	return &Session{
		resolver:    resolver,
		fetcher:     fetcher,
		renderer:    renderer,
		expander:    expander.New(fetcher, expCfg),
		collector:   pagination.NewCollector(fetcher, pageCfg),
		generations: opts.Generations,
		spinner:     newSpinnerGate(opts.Spinner),
		intN:        opts.IntN,
		logger:      logging.NewLogger(logging.ComponentSearch),
		state:       StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the context and normalized term of the latest search.
func (s *Session) Query() (pokedex.SearchContext, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context, s.term
}

// Loading reports whether any search is in flight.
func (s *Session) Loading() bool {
	return s.spinner.loading()
}

// Search runs one lookup and renders its result. The returned error is the
// one shown to the user; individual list item failures are only counted.
func (s *Session) Search(ctx context.Context, c pokedex.SearchContext, term string) (*Outcome, error) {
	gen, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Generation: gen, Context: c, Term: term}

	s.mu.Lock()
	s.context, s.term = c, term
	s.mu.Unlock()

	if !c.Valid() {
		return out, s.fail(ctx, out, pokedex.NewError(pokedex.ErrorClassInvalidContext, "", 0,
			fmt.Errorf("unknown context %q", c)))
	}
	normalized, err := pokedex.NormalizeTerm(term)
	if err != nil {
		return out, s.fail(ctx, out, err)
	}
	out.Term = normalized

	s.mu.Lock()
	s.term = normalized
	s.mu.Unlock()

	return s.run(ctx, out, func() error {
		url, err := s.resolver.Resolve(c, normalized)
		if err != nil {
			return err
		}
		if c.IsList() {
			return s.searchList(ctx, out, url)
		}
		return s.searchOne(ctx, out, url)
	})
}

// All collects the full species catalog and expands every entry into a
// card under AllHeading, all under one generation.
func (s *Session) All(ctx context.Context) (*Outcome, error) {
	gen, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Generation: gen, Context: ContextAll}

	s.mu.Lock()
	s.context, s.term = ContextAll, ""
	s.mu.Unlock()

	return s.run(ctx, out, func() error {
		refs, err := s.collector.FetchAll(ctx, 0, 0)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			e := pokedex.NewError(pokedex.ErrorClassEmptyResultSet, s.resolver.Base(), 0, nil)
			e.Message = "No Pokémon found"
			return e
		}
		s.expandList(ctx, out, refs, AllHeading)
		return nil
	})
}

// run drives a validated lookup from Loading to Rendered or ErrorShown.
func (s *Session) run(ctx context.Context, out *Outcome, lookup func() error) (*Outcome, error) {
	gen, c := out.Generation, out.Context
	start := time.Now()

	s.transition(gen, StateLoading)
	s.spinner.dispatch()
	defer s.spinner.settle()

	s.logger.Info().
		Uint64("generation", gen).
		Str("context", string(c)).
		Str("term", out.Term).
		Msg("Search started")

	err := lookup()
	searchDuration.WithLabelValues(string(c)).Observe(time.Since(start).Seconds())
	if err != nil {
		return out, s.fail(ctx, out, err)
	}

	out.Stale = !s.isCurrent(ctx, gen)
	if out.Stale {
		searchesTotal.WithLabelValues(string(c), "stale").Inc()
		s.logger.Warn().Uint64("generation", gen).Msg("Search superseded before it settled")
		return out, nil
	}

	s.transition(gen, StateSuccess)
	s.transition(gen, StateRendered)
	searchesTotal.WithLabelValues(string(c), "success").Inc()

	s.logger.Info().
		Uint64("generation", gen).
		Str("context", string(c)).
		Int("loaded", out.Loaded).
		Int("failed", out.Failed).
		Dur("duration", time.Since(start)).
		Msg("Search rendered")

	return out, nil
}

func (s *Session) searchOne(ctx context.Context, out *Outcome, url string) error {
	summary, err := s.fetcher.FetchPokemon(ctx, url)
	if err != nil {
		return err
	}

	d := presenter.Present(summary)
	out.Detail = &d
	out.Requested, out.Loaded = 1, 1
	if s.isCurrent(ctx, out.Generation) {
		s.renderer.Detail(out.Generation, d)
	}
	return nil
}

func (s *Session) searchList(ctx context.Context, out *Outcome, url string) error {
	refs, err := s.fetcher.FetchReferences(ctx, url)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		e := pokedex.NewError(pokedex.ErrorClassEmptyResultSet, url, 0, nil)
		e.Message = fmt.Sprintf("No Pokémon found with that %s", out.Context)
		return e
	}

	s.expandList(ctx, out, refs, fmt.Sprintf("Pokémon with %s %s", out.Context, out.Term))
	return nil
}

// expandList renders refs as cards under heading and records the counts.
func (s *Session) expandList(ctx context.Context, out *Outcome, refs pokedex.ReferenceList, heading string) {
	gen := out.Generation
	s.renderer.Heading(gen, heading)

	res := s.expander.Expand(ctx, refs, func() bool { return s.isCurrent(ctx, gen) }, func(item expander.Item) {
		s.renderer.Card(gen, item.Index, presenter.Present(item.Summary))
	})

	out.Requested = res.Requested
	out.Loaded = res.Rendered + res.Stale
	out.Failed = res.Failed
	if res.Failed > 0 {
		s.renderer.Notice(gen, fmt.Sprintf("%d of %d loaded", out.Loaded, out.Requested))
	}
}

// Random looks up a uniformly random id in 1..RandomMax.
func (s *Session) Random(ctx context.Context) (*Outcome, error) {
	id := s.intN(RandomMax) + 1
	return s.Search(ctx, pokedex.ContextID, strconv.Itoa(id))
}

// Clear empties the surface and returns to Idle. In-flight results of the
// previous search are discarded.
func (s *Session) Clear(ctx context.Context) error {
	gen, err := s.begin(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.context, s.term = "", ""
	s.mu.Unlock()

	s.logger.Debug().Uint64("generation", gen).Msg("Surface cleared")
	return nil
}

// Catalog fetches the full species catalog. A pageSize of 0 selects the
// configured default.
func (s *Session) Catalog(ctx context.Context, pageSize int) ([]pokedex.Reference, error) {
	return s.collector.FetchAll(ctx, pageSize, 0)
}

// begin takes a new generation, clears the surface and returns to Idle.
// The newest generation always takes ownership; a value at or below the
// previous owner means the counter restarted.
func (s *Session) begin(ctx context.Context) (uint64, error) {
	s.beginMu.Lock()
	defer s.beginMu.Unlock()

	gen, err := s.generations.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next generation: %w", err)
	}
	s.renderer.Reset(gen)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.owner {
		s.logger.Warn().
			Uint64("generation", gen).
			Uint64("previous", s.owner).
			Msg("Generation counter restarted")
	}
	s.owner = gen
	s.state = StateIdle
	return gen, nil
}

// fail shows err for gen and records the failure.
func (s *Session) fail(ctx context.Context, out *Outcome, err error) error {
	class := pokedex.ClassOf(err)
	if class == "" {
		class = "unknown"
	}
	searchesTotal.WithLabelValues(string(out.Context), string(class)).Inc()

	if !s.isCurrent(ctx, out.Generation) {
		out.Stale = true
		return err
	}

	s.transition(out.Generation, StateFailure)
	s.renderer.Error(out.Generation, pokedex.UserMessage(err))
	s.transition(out.Generation, StateErrorShown)

	s.logger.Error().
		Err(err).
		Uint64("generation", out.Generation).
		Str("context", string(out.Context)).
		Str("error_class", string(class)).
		Msg("Search failed")
	return err
}

// transition moves to next if gen still owns the session state.
func (s *Session) transition(gen uint64, next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.owner {
		return
	}
	if !CanTransition(s.state, next) {
		s.logger.Warn().
			Str("from", string(s.state)).
			Str("to", string(next)).
			Msg("Invalid state transition")
		return
	}
	s.state = next
}

// isCurrent reports whether gen is still the latest generation. A counter
// failure keeps rendering rather than dropping results.
func (s *Session) isCurrent(ctx context.Context, gen uint64) bool {
	cur, err := s.generations.Current(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Uint64("generation", gen).Msg("Generation check failed")
		return true
	}
	return cur == gen
}
