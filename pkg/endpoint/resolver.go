// Package endpoint maps a search context and term to one of the fixed
// upstream URL templates.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
)

// DefaultBaseURL is the public PokeAPI root.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Templates keyed by context. id and name share the same path position.
var templates = map[pokedex.SearchContext]string{
	pokedex.ContextID:      "%s/pokemon/%s",
	pokedex.ContextName:    "%s/pokemon/%s",
	pokedex.ContextType:    "%s/type/%s",
	pokedex.ContextAbility: "%s/ability/%s",
}

const catalogTemplate = "%s/pokemon?limit=%d&offset=%d"

// Resolver builds request URLs against a base.
type Resolver struct {
	base string
}

// NewResolver creates a resolver. An empty base selects DefaultBaseURL.
func NewResolver(base string) *Resolver {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Resolver{base: strings.TrimRight(base, "/")}
}

// Base returns the normalized base URL.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve returns the request URL for (context, term).
// The caller validates the term; Resolve only rejects unknown contexts.
func (r *Resolver) Resolve(c pokedex.SearchContext, term string) (string, error) {
	tmpl, ok := templates[c]
	if !ok {
		return "", pokedex.NewError(pokedex.ErrorClassInvalidContext, "", 0,
			fmt.Errorf("unknown context %q", c))
	}
	return fmt.Sprintf(tmpl, r.base, url.PathEscape(term)), nil
}

// CatalogURL returns the paginated species listing URL.
func (r *Resolver) CatalogURL(limit, offset int) string {
	return fmt.Sprintf(catalogTemplate, r.base, limit, offset)
}

// Kind returns the endpoint family of a URL under this base
// ("pokemon", "type", "ability"), used as a low-cardinality metric label.
func (r *Resolver) Kind(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	path := u.Path
	if b, err := url.Parse(r.base); err == nil {
		path = strings.TrimPrefix(path, b.Path)
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "unknown"
	}
	kind, _, _ := strings.Cut(path, "/")
	if kind == "pokemon" && u.Query().Has("limit") {
		return "catalog"
	}
	return kind
}
