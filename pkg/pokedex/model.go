package pokedex

import (
	"strconv"
	"strings"
)

// Reference is a lightweight pointer to a resource that must be dereferenced
// with a second fetch.
type Reference struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID extracts the numeric id from the trailing path segment of the URL.
// Returns 0 when the URL carries no id.
func (r Reference) ID() int {
	parts := strings.Split(strings.TrimRight(r.URL, "/"), "/")
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return id
}

// ReferenceList is the result of a type or ability lookup.
type ReferenceList []Reference

// Page is one bounded slice of the species catalog.
type Page struct {
	Results []Reference `json:"results"`

	// NextOffset is nil when this page ends the catalog.
	NextOffset *int `json:"next_offset,omitempty"`
}

// EntitySummary is a resolved Pokémon record.
type EntitySummary struct {
	Name           string   `json:"name"`
	SpriteURL      string   `json:"sprite_url"`
	BaseExperience int      `json:"base_experience"`
	Height         int      `json:"height"` // decimetres
	Weight         int      `json:"weight"` // hectograms
	Order          int      `json:"order"`
	Abilities      []string `json:"abilities"`
}

// NamedResource is the {name, url} pair used throughout the upstream API.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonResponse is the upstream body of /pokemon/{idOrName}.
type PokemonResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	BaseExperience int    `json:"base_experience"`
	Height         int    `json:"height"`
	Weight         int    `json:"weight"`
	Order          int    `json:"order"`
	Sprites        struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Abilities []struct {
		Ability  NamedResource `json:"ability"`
		IsHidden bool          `json:"is_hidden"`
		Slot     int           `json:"slot"`
	} `json:"abilities"`
}

// Summary converts the upstream body into an EntitySummary, keeping the
// abilities in upstream order.
func (p *PokemonResponse) Summary() EntitySummary {
	abilities := make([]string, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		abilities = append(abilities, a.Ability.Name)
	}
	return EntitySummary{
		Name:           p.Name,
		SpriteURL:      p.Sprites.FrontDefault,
		BaseExperience: p.BaseExperience,
		Height:         p.Height,
		Weight:         p.Weight,
		Order:          p.Order,
		Abilities:      abilities,
	}
}

// MemberListResponse is the shared shape of /type/{name} and /ability/{name}.
// Only the pokemon member list is consumed.
type MemberListResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Pokemon []struct {
		Pokemon  NamedResource `json:"pokemon"`
		Slot     int           `json:"slot"`
		IsHidden bool          `json:"is_hidden"`
	} `json:"pokemon"`
}

// References flattens the member list into a ReferenceList.
func (m *MemberListResponse) References() ReferenceList {
	refs := make(ReferenceList, 0, len(m.Pokemon))
	for _, p := range m.Pokemon {
		refs = append(refs, Reference{Name: p.Pokemon.Name, URL: p.Pokemon.URL})
	}
	return refs
}

// CatalogResponse is the upstream body of /pokemon?limit=&offset=.
type CatalogResponse struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []Reference `json:"results"`
}

// Page converts the response into a Page. The end of data is signalled only
// by a short page; Count and Next are not consulted.
func (c *CatalogResponse) Page(limit, offset int) *Page {
	page := &Page{Results: c.Results}
	if len(c.Results) >= limit {
		next := offset + limit
		page.NextOffset = &next
	}
	return page
}
