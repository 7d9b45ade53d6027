package expander

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex-client/internal/testutil"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
)

// fakeFetcher resolves "u<k>" URLs, failing the ones listed in fail.
type fakeFetcher struct {
	fail     map[string]bool
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeFetcher) FetchPokemon(ctx context.Context, url string) (pokedex.EntitySummary, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[url] {
		return pokedex.EntitySummary{}, pokedex.NewError(pokedex.ErrorClassNotFound, url, 404, nil)
	}
	return pokedex.EntitySummary{Name: "name-" + url}, nil
}

func makeRefs(n int) pokedex.ReferenceList {
	refs := make(pokedex.ReferenceList, n)
	for i := range refs {
		refs[i] = pokedex.Reference{Name: fmt.Sprintf("p%d", i), URL: fmt.Sprintf("u%d", i)}
	}
	return refs
}

func TestExpand_AllResolved(t *testing.T) {
	exp := New(&fakeFetcher{}, DefaultConfig())
	refs := makeRefs(25)

	seen := make(map[int]bool)
	res := exp.Expand(context.Background(), refs, nil, func(item Item) {
		if seen[item.Index] {
			t.Errorf("item %d rendered twice", item.Index)
		}
		seen[item.Index] = true
		if item.Summary.Name != "name-"+refs[item.Index].URL {
			t.Errorf("item %d summary = %q", item.Index, item.Summary.Name)
		}
	})

	if res.Requested != 25 || res.Rendered != 25 || res.Failed != 0 || res.Stale != 0 {
		t.Errorf("Result = %+v", res)
	}
	if len(seen) != 25 {
		t.Errorf("rendered %d distinct items, want 25", len(seen))
	}
}

func TestExpand_PartialFailure(t *testing.T) {
	for _, k := range []int{0, 7, 29} {
		t.Run(fmt.Sprintf("fail_%d", k), func(t *testing.T) {
			fetcher := &fakeFetcher{fail: map[string]bool{fmt.Sprintf("u%d", k): true}}
			exp := New(fetcher, DefaultConfig())

			rendered := 0
			res := exp.Expand(context.Background(), makeRefs(30), nil, func(item Item) {
				if item.Index == k {
					t.Errorf("failed item %d was rendered", k)
				}
				rendered++
			})

			if rendered != 29 {
				t.Errorf("rendered = %d, want 29", rendered)
			}
			if res.Failed != 1 || res.Rendered != 29 {
				t.Errorf("Result = %+v", res)
			}
		})
	}
}

func TestExpand_ConcurrencyBounded(t *testing.T) {
	fetcher := &fakeFetcher{delay: 20 * time.Millisecond}
	exp := New(fetcher, Config{MaxConcurrency: 4})

	res := exp.Expand(context.Background(), makeRefs(20), nil, func(Item) {})

	if res.Rendered != 20 {
		t.Errorf("Rendered = %d, want 20", res.Rendered)
	}
	if got := fetcher.maxSeen.Load(); got > 4 {
		t.Errorf("max in-flight = %d, want <= 4", got)
	}
	if got := fetcher.maxSeen.Load(); got < 2 {
		t.Errorf("max in-flight = %d, expected concurrent fetches", got)
	}
}

func TestExpand_RenderSerialized(t *testing.T) {
	exp := New(&fakeFetcher{delay: time.Millisecond}, DefaultConfig())

	var mu sync.Mutex
	active := 0
	overlap := false
	exp.Expand(context.Background(), makeRefs(40), nil, func(Item) {
		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(100 * time.Microsecond)

		mu.Lock()
		active--
		mu.Unlock()
	})

	if overlap {
		t.Error("render callback invoked concurrently")
	}
}

func TestExpand_GuardDiscardsStale(t *testing.T) {
	exp := New(&fakeFetcher{}, Config{MaxConcurrency: 1})

	var current atomic.Bool
	current.Store(true)
	rendered := 0

	res := exp.Expand(context.Background(), makeRefs(10), current.Load, func(Item) {
		rendered++
		if rendered == 3 {
			// A newer search took over.
			current.Store(false)
		}
	})

	if rendered != 3 {
		t.Errorf("rendered = %d, want 3", rendered)
	}
	if res.Stale != 7 {
		t.Errorf("Stale = %d, want 7", res.Stale)
	}
}

func TestExpand_Empty(t *testing.T) {
	exp := New(&fakeFetcher{}, DefaultConfig())
	res := exp.Expand(context.Background(), nil, nil, func(Item) {
		t.Error("render called for empty list")
	})
	if res != (Result{}) {
		t.Errorf("Result = %+v, want zero", res)
	}
}

func TestExpand_CancelledContext(t *testing.T) {
	exp := New(&fakeFetcher{}, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := exp.Expand(ctx, makeRefs(5), nil, func(Item) {
		t.Error("render called after cancellation")
	})
	if res.Failed != 5 {
		t.Errorf("Failed = %d, want 5", res.Failed)
	}
}

func TestExpand_AgainstMockAPI(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()

	names := make([]string, 30)
	for i := range names {
		names[i] = fmt.Sprintf("ghost-%d", i)
		mock.AddPokemon(testutil.NewPokemon(i+1, names[i], "levitate"))
	}
	mock.AddType("ghost", names...)
	mock.Fail(testutil.PokemonPath("ghost-4"), 500)
	mock.SetDelay(5 * time.Millisecond)

	cfg := client.DefaultConfig("test/1.0")
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}

	refs, err := c.FetchReferences(context.Background(), mock.URL()+"/type/ghost")
	if err != nil {
		t.Fatalf("FetchReferences() error = %v", err)
	}

	exp := New(c, DefaultConfig())
	var got []string
	res := exp.Expand(context.Background(), refs, nil, func(item Item) {
		got = append(got, item.Summary.Name)
	})

	if len(got) != 29 || res.Failed != 1 {
		t.Errorf("rendered %d, failed %d; want 29 and 1", len(got), res.Failed)
	}
	if mock.CountRequests("/api/v2/pokemon/") != 30 {
		t.Errorf("detail requests = %d, want 30", mock.CountRequests("/api/v2/pokemon/"))
	}
	if mock.MaxInFlight() > DefaultMaxConcurrency {
		t.Errorf("MaxInFlight = %d, want <= %d", mock.MaxInFlight(), DefaultMaxConcurrency)
	}
}
