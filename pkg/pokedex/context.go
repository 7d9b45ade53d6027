// Package pokedex holds the data model shared by every stage of a lookup:
// the search context, the upstream response shapes, the resolved entity
// summary and the error taxonomy surfaced to users.
package pokedex

import (
	"strings"
)

// SearchContext selects the endpoint template and the expected response shape.
type SearchContext string

const (
	// ContextID looks up a single Pokémon by numeric id.
	ContextID SearchContext = "id"

	// ContextName looks up a single Pokémon by name.
	ContextName SearchContext = "name"

	// ContextType lists every Pokémon of a type.
	ContextType SearchContext = "type"

	// ContextAbility lists every Pokémon with an ability.
	ContextAbility SearchContext = "ability"
)

// Contexts lists the recognized search contexts in display order.
var Contexts = []SearchContext{ContextName, ContextID, ContextType, ContextAbility}

// Valid reports whether c is one of the four recognized contexts.
func (c SearchContext) Valid() bool {
	switch c {
	case ContextID, ContextName, ContextType, ContextAbility:
		return true
	default:
		return false
	}
}

// IsList reports whether the context yields a reference list rather than a
// single entity.
func (c SearchContext) IsList() bool {
	return c == ContextType || c == ContextAbility
}

// ParseContext converts user input into a SearchContext.
func ParseContext(s string) (SearchContext, error) {
	c := SearchContext(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", NewError(ErrorClassInvalidContext, "", 0, nil)
	}
	return c, nil
}

// NormalizeTerm trims and lower-cases a search term.
// An empty result fails with ErrEmptyInput.
func NormalizeTerm(term string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return "", NewError(ErrorClassEmptyInput, "", 0, nil)
	}
	return t, nil
}
