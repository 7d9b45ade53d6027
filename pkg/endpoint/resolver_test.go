package endpoint

import (
	"errors"
	"strings"
	"testing"

	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
)

func TestResolve(t *testing.T) {
	r := NewResolver("")

	tests := []struct {
		name    string
		context pokedex.SearchContext
		term    string
		want    string
	}{
		{"by name", pokedex.ContextName, "pikachu", "https://pokeapi.co/api/v2/pokemon/pikachu"},
		{"by id", pokedex.ContextID, "25", "https://pokeapi.co/api/v2/pokemon/25"},
		{"by type", pokedex.ContextType, "ghost", "https://pokeapi.co/api/v2/type/ghost"},
		{"by ability", pokedex.ContextAbility, "levitate", "https://pokeapi.co/api/v2/ability/levitate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.context, tt.term)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
			if n := strings.Count(got, tt.term); n != 1 {
				t.Errorf("term %q occurs %d times in %q, want 1", tt.term, n, got)
			}
			if !strings.HasSuffix(got, "/"+tt.term) {
				t.Errorf("term %q not in final path segment of %q", tt.term, got)
			}
		})
	}
}

func TestResolve_InvalidContext(t *testing.T) {
	r := NewResolver("")
	for _, c := range []pokedex.SearchContext{"", "move", "NAME"} {
		if _, err := r.Resolve(c, "pikachu"); !errors.Is(err, pokedex.ErrInvalidContext) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidContext", c, err)
		}
	}
}

func TestResolve_EscapesTerm(t *testing.T) {
	r := NewResolver("http://localhost:9999/api/v2/")
	got, err := r.Resolve(pokedex.ContextName, "mr mime")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "http://localhost:9999/api/v2/pokemon/mr%20mime" {
		t.Errorf("Resolve() = %q", got)
	}
}

func TestCatalogURL(t *testing.T) {
	r := NewResolver("")
	want := "https://pokeapi.co/api/v2/pokemon?limit=800&offset=1600"
	if got := r.CatalogURL(800, 1600); got != want {
		t.Errorf("CatalogURL() = %q, want %q", got, want)
	}
}

func TestKind(t *testing.T) {
	r := NewResolver("http://127.0.0.1:1234/api/v2")
	tests := []struct {
		url  string
		want string
	}{
		{"http://127.0.0.1:1234/api/v2/pokemon/25", "pokemon"},
		{"http://127.0.0.1:1234/api/v2/pokemon/25/", "pokemon"},
		{"http://127.0.0.1:1234/api/v2/type/ghost", "type"},
		{"http://127.0.0.1:1234/api/v2/ability/levitate", "ability"},
		{"http://127.0.0.1:1234/api/v2/pokemon?limit=20&offset=0", "catalog"},
		{"http://127.0.0.1:1234/api/v2/", "unknown"},
	}
	for _, tt := range tests {
		if got := r.Kind(tt.url); got != tt.want {
			t.Errorf("Kind(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
