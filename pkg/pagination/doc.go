// Package pagination collects the full species catalog from the paginated
// listing endpoint.
//
// The upstream listing is addressed by limit and offset. The collector asks
// for one page at a time, advancing the offset by the page size, and stops
// as soon as a page comes back shorter than requested. The count field of
// the listing is never consulted.
//
// Example usage:
//
//	collector := pagination.NewCollector(pokeClient, pagination.DefaultConfig())
//	species, err := collector.FetchAll(ctx, 800, 0)
//
// The collector:
//   - Fetches pages sequentially (ceil(total/pageSize) round-trips)
//   - Concatenates results in page order
//   - Fails fast on the first page error and discards partial results
package pagination
