// Package testutil provides testing utilities for the Pokédex client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// APIPrefix is the path prefix served by the mock, mirroring PokeAPI.
const APIPrefix = "/api/v2"

// MockPokemon is a fixture for a single entity detail response.
type MockPokemon struct {
	ID             int
	Name           string
	BaseExperience int
	Height         int
	Weight         int
	Order          int
	Abilities      []string
}

// NewPokemon builds a fixture with plausible numeric fields.
func NewPokemon(id int, name string, abilities ...string) MockPokemon {
	return MockPokemon{
		ID:             id,
		Name:           name,
		BaseExperience: 100 + id,
		Height:         id % 20,
		Weight:         id * 10,
		Order:          id,
		Abilities:      abilities,
	}
}

// MockPokeAPI is a configurable mock of the upstream API.
type MockPokeAPI struct {
	server *httptest.Server
	mu     sync.RWMutex

	handlers map[string]http.HandlerFunc
	pokemon  map[string]MockPokemon
	members  map[string][]string // "type/ghost" -> pokemon names
	failures map[string]int
	catalog  int
	delay    time.Duration

	// Tracking
	requests    []string
	inFlight    int
	maxInFlight int
}

// NewMockPokeAPI starts a new mock server.
func NewMockPokeAPI() *MockPokeAPI {
	mock := &MockPokeAPI{
		handlers: make(map[string]http.HandlerFunc),
		pokemon:  make(map[string]MockPokemon),
		members:  make(map[string][]string),
		failures: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, r.URL.RequestURI())
		mock.inFlight++
		if mock.inFlight > mock.maxInFlight {
			mock.maxInFlight = mock.inFlight
		}
		delay := mock.delay
		key := strings.TrimRight(r.URL.Path, "/")
		handler, exists := mock.handlers[key]
		status, failing := mock.failures[key]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.inFlight--
			mock.mu.Unlock()
		}()

		if delay > 0 {
			time.Sleep(delay)
		}

		switch {
		case failing:
			http.Error(w, http.StatusText(status), status)
		case exists:
			handler(w, r)
		default:
			mock.defaultHandler(w, r)
		}
	}))

	return mock
}

// URL returns the API base URL (server root plus APIPrefix).
func (m *MockPokeAPI) URL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// SetHandler overrides the response for a path (trailing slash ignored).
func (m *MockPokeAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[strings.TrimRight(path, "/")] = handler
}

// SetDelay delays every response.
func (m *MockPokeAPI) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Fail makes a path (trailing slash ignored) answer with the given status.
func (m *MockPokeAPI) Fail(path string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[strings.TrimRight(path, "/")] = status
}

// AddPokemon registers a fixture reachable by id and by name.
func (m *MockPokeAPI) AddPokemon(p MockPokemon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pokemon[p.Name] = p
	m.pokemon[strconv.Itoa(p.ID)] = p
}

// AddType registers a type whose members are the given (already added) names.
func (m *MockPokeAPI) AddType(name string, members ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members["type/"+name] = members
}

// AddAbility registers an ability whose members are the given names.
func (m *MockPokeAPI) AddAbility(name string, members ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members["ability/"+name] = members
}

// SetCatalogSize sets the number of species in the paginated listing.
func (m *MockPokeAPI) SetCatalogSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = n
}

// PokemonPath returns the request path of a pokemon detail.
func PokemonPath(idOrName string) string {
	return fmt.Sprintf("%s/pokemon/%s/", APIPrefix, idOrName)
}

// PokemonURL returns the absolute URL of a pokemon detail, as listed in
// reference lists.
func (m *MockPokeAPI) PokemonURL(idOrName string) string {
	return m.server.URL + PokemonPath(idOrName)
}

// RequestCount returns the number of requests received.
func (m *MockPokeAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// CountRequests returns the number of requests whose path starts with prefix.
func (m *MockPokeAPI) CountRequests(prefix string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// Requests returns a copy of the received request URIs in arrival order.
func (m *MockPokeAPI) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.requests...)
}

// MaxInFlight returns the highest number of concurrent requests observed.
func (m *MockPokeAPI) MaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxInFlight
}

// defaultHandler serves the registered fixtures with PokeAPI-like bodies.
func (m *MockPokeAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, APIPrefix), "/")
	kind, key, _ := strings.Cut(path, "/")

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case kind == "pokemon" && key == "":
		m.writeCatalog(w, r)
	case kind == "pokemon":
		p, ok := m.pokemon[key]
		if !ok {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		writeJSON(w, pokemonBody(p))
	case kind == "type" || kind == "ability":
		names, ok := m.members[kind+"/"+key]
		if !ok {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		entries := make([]map[string]any, 0, len(names))
		for _, name := range names {
			entries = append(entries, map[string]any{
				"pokemon": map[string]string{"name": name, "url": m.server.URL + PokemonPath(name)},
				"slot":    1,
			})
		}
		writeJSON(w, map[string]any{"id": 1, "name": key, "pokemon": entries})
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func (m *MockPokeAPI) writeCatalog(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	results := make([]map[string]string, 0, limit)
	for i := offset; i < offset+limit && i < m.catalog; i++ {
		id := i + 1
		results = append(results, map[string]string{
			"name": fmt.Sprintf("species-%d", id),
			"url":  m.server.URL + PokemonPath(strconv.Itoa(id)),
		})
	}

	writeJSON(w, map[string]any{
		"count":    m.catalog,
		"next":     nil,
		"previous": nil,
		"results":  results,
	})
}

func pokemonBody(p MockPokemon) map[string]any {
	abilities := make([]map[string]any, 0, len(p.Abilities))
	for i, a := range p.Abilities {
		abilities = append(abilities, map[string]any{
			"ability":   map[string]string{"name": a, "url": fmt.Sprintf("https://pokeapi.co/api/v2/ability/%s/", a)},
			"is_hidden": false,
			"slot":      i + 1,
		})
	}
	return map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"base_experience": p.BaseExperience,
		"height":          p.Height,
		"weight":          p.Weight,
		"order":           p.Order,
		"sprites":         map[string]string{"front_default": fmt.Sprintf("https://img.example/%d.png", p.ID)},
		"abilities":       abilities,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
