// Package metrics exposes the Prometheus registry used by the Pokédex
// client. Metrics themselves are defined next to the code that updates them
// (client, pagination, expander, search) and registered with
// promauto.With(Registry) under Namespace.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all pokedex_* metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer served by Handler.
var Gatherer = prometheus.DefaultGatherer

// Namespace prefixes every metric name.
const Namespace = "pokedex"

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Upstream requests (pkg/client):
//   - pokedex_requests_total{endpoint, status} (Counter)
//   - pokedex_request_duration_seconds{endpoint} (Histogram)
//   - pokedex_errors_total{class} (Counter): not_found, network, malformed_response
//
// Catalog (pkg/pagination):
//   - pokedex_catalog_pages_total (Counter): pages fetched
//   - pokedex_catalog_items_total (Counter): references collected
//
// List expansion (pkg/expander):
//   - pokedex_expand_items_total{outcome} (Counter): rendered, failed, stale
//   - pokedex_expand_inflight (Gauge): detail fetches in flight
//
// Searches (pkg/search):
//   - pokedex_searches_total{context, outcome} (Counter)
//   - pokedex_search_duration_seconds{context} (Histogram)
//
// Example Prometheus Queries:
//
//   # Share of list items that failed
//   sum(rate(pokedex_expand_items_total{outcome="failed"}[5m])) /
//   sum(rate(pokedex_expand_items_total[5m]))
//
//   # P95 search latency per context
//   histogram_quantile(0.95, sum by (le, context) (rate(pokedex_search_duration_seconds_bucket[5m])))
//
//   # Superseded searches
//   rate(pokedex_searches_total{outcome="stale"}[5m])
