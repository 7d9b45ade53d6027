// Package client provides the fetch gateway: a single GET per call, status
// validation, JSON decoding and normalization of every failure into a
// *pokedex.Error.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/endpoint"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for upstream requests.
var (
	requestsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "requests_total",
		Help:      "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.With(metrics.Registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Name:      "request_duration_seconds",
		Help:      "Upstream request duration in seconds by endpoint",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "errors_total",
		Help:      "Total upstream errors by class",
	}, []string{"class"})
)

// Client is the fetch gateway.
type Client struct {
	httpClient *http.Client
	resolver   *endpoint.Resolver
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the upstream API (default endpoint.DefaultBaseURL)
	BaseURL string

	// User-Agent header sent with every request
	UserAgent string

	// Transport timeout. Zero disables it.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   endpoint.DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	logger := logging.NewLogger(logging.ComponentClient)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		resolver: endpoint.NewResolver(cfg.BaseURL),
		config:   cfg,
		logger:   logger,
	}, nil
}

// Resolver returns the endpoint resolver bound to the configured base URL.
func (c *Client) Resolver() *endpoint.Resolver {
	return c.resolver
}

// GetJSON performs one GET against rawURL and decodes the body into target.
// Failures are *pokedex.Error values of class not_found, network or
// malformed_response. No retries are attempted.
func (c *Client) GetJSON(ctx context.Context, rawURL string, target any) error {
	kind := c.resolver.Kind(rawURL)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(kind).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pokedex.NewError(pokedex.ErrorClassNetwork, rawURL, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", kind).
		Str("url", rawURL).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		class := c.classifyError(nil, err)
		errorsTotal.WithLabelValues(string(class)).Inc()
		requestsTotal.WithLabelValues(kind, "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("HTTP request failed")
		return pokedex.NewError(class, rawURL, 0, err)
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(kind, strconv.Itoa(resp.StatusCode)).Inc()

	if class := c.classifyError(resp, nil); class != "" {
		errorsTotal.WithLabelValues(string(class)).Inc()
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)

		c.logger.Debug().
			Str("url", rawURL).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Upstream returned non-success status")
		return pokedex.NewError(class, rawURL, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		errorsTotal.WithLabelValues(string(pokedex.ErrorClassMalformedResponse)).Inc()
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("Failed to decode upstream body")
		return pokedex.NewError(pokedex.ErrorClassMalformedResponse, rawURL, resp.StatusCode,
			fmt.Errorf("decode json: %w", err))
	}

	return nil
}

// FetchPokemon fetches one entity detail and converts it to a summary.
func (c *Client) FetchPokemon(ctx context.Context, rawURL string) (pokedex.EntitySummary, error) {
	var body pokedex.PokemonResponse
	if err := c.GetJSON(ctx, rawURL, &body); err != nil {
		return pokedex.EntitySummary{}, err
	}
	if body.Name == "" {
		return pokedex.EntitySummary{}, pokedex.NewError(pokedex.ErrorClassMalformedResponse, rawURL, 0,
			fmt.Errorf("pokemon body has no name"))
	}
	return body.Summary(), nil
}

// FetchReferences fetches a type or ability member list.
func (c *Client) FetchReferences(ctx context.Context, rawURL string) (pokedex.ReferenceList, error) {
	var body pokedex.MemberListResponse
	if err := c.GetJSON(ctx, rawURL, &body); err != nil {
		return nil, err
	}
	return body.References(), nil
}

// FetchPage fetches one page of the species catalog.
func (c *Client) FetchPage(ctx context.Context, limit, offset int) (*pokedex.Page, error) {
	rawURL := c.resolver.CatalogURL(limit, offset)

	var body pokedex.CatalogResponse
	if err := c.GetJSON(ctx, rawURL, &body); err != nil {
		return nil, err
	}
	return body.Page(limit, offset), nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
