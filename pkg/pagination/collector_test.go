package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
)

// fakeCatalog serves a catalog of total entries and records each call.
type fakeCatalog struct {
	mu       sync.Mutex
	total    int
	failAt   int // offset that fails, -1 for none
	calls    []int
	inFlight int
	overlap  bool
}

func newFakeCatalog(total int) *fakeCatalog {
	return &fakeCatalog{total: total, failAt: -1}
}

func (f *fakeCatalog) FetchPage(ctx context.Context, limit, offset int) (*pokedex.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, offset)
	f.inFlight++
	if f.inFlight > 1 {
		f.overlap = true
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if offset == f.failAt {
		return nil, pokedex.NewError(pokedex.ErrorClassNotFound, "catalog", 500, nil)
	}

	var results []pokedex.Reference
	for i := offset; i < offset+limit && i < f.total; i++ {
		results = append(results, pokedex.Reference{Name: fmt.Sprintf("species-%d", i+1)})
	}
	return &pokedex.Page{Results: results}, nil
}

func TestFetchAll_CallCount(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantCalls int
	}{
		{"exact multiple", 100, 20, 6}, // 5 full pages plus the empty terminator
		{"non multiple", 105, 20, 6},
		{"single short page", 7, 20, 1},
		{"empty catalog", 0, 20, 1},
		{"page size one", 3, 1, 4},
		{"large page", 1302, 800, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeCatalog(tt.total)
			collector := NewCollector(fake, DefaultConfig())

			results, err := collector.FetchAll(context.Background(), tt.pageSize, 0)
			if err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if len(results) != tt.total {
				t.Errorf("len(results) = %d, want %d", len(results), tt.total)
			}
			if len(fake.calls) != tt.wantCalls {
				t.Errorf("calls = %d, want %d", len(fake.calls), tt.wantCalls)
			}
			for i, off := range fake.calls {
				if off != i*tt.pageSize {
					t.Errorf("call %d offset = %d, want %d", i, off, i*tt.pageSize)
				}
			}
			if fake.overlap {
				t.Error("pages were fetched concurrently")
			}
		})
	}
}

func TestFetchAll_NonMultipleIsCeil(t *testing.T) {
	// For a total that is not a multiple of the page size the walk ends on
	// the short page: ceil(T/P) calls.
	for _, total := range []int{1, 19, 21, 59, 61} {
		fake := newFakeCatalog(total)
		collector := NewCollector(fake, DefaultConfig())

		if _, err := collector.FetchAll(context.Background(), 20, 0); err != nil {
			t.Fatalf("FetchAll() error = %v", err)
		}
		want := (total + 19) / 20
		if len(fake.calls) != want {
			t.Errorf("total %d: calls = %d, want %d", total, len(fake.calls), want)
		}
	}
}

func TestFetchAll_ShortFirstPageStops(t *testing.T) {
	// The upstream claims 500 entries but returns a short first page.
	short := &shortPageFetcher{size: 3}
	collector := NewCollector(short, DefaultConfig())

	results, err := collector.FetchAll(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if short.calls != 1 {
		t.Errorf("calls = %d, want 1", short.calls)
	}
	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
}

type shortPageFetcher struct {
	size  int
	calls int
}

func (s *shortPageFetcher) FetchPage(ctx context.Context, limit, offset int) (*pokedex.Page, error) {
	s.calls++
	return &pokedex.Page{Results: make([]pokedex.Reference, s.size)}, nil
}

func TestFetchAll_FailFast(t *testing.T) {
	fake := newFakeCatalog(100)
	fake.failAt = 40
	collector := NewCollector(fake, DefaultConfig())

	results, err := collector.FetchAll(context.Background(), 20, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, pokedex.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if results != nil {
		t.Errorf("results = %d entries, want nil", len(results))
	}
	if len(fake.calls) != 3 {
		t.Errorf("calls = %d, want 3", len(fake.calls))
	}
}

func TestFetchAll_StartOffset(t *testing.T) {
	fake := newFakeCatalog(50)
	collector := NewCollector(fake, DefaultConfig())

	results, err := collector.FetchAll(context.Background(), 20, 30)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(results) != 20 {
		t.Errorf("len(results) = %d, want 20", len(results))
	}
	if results[0].Name != "species-31" {
		t.Errorf("results[0] = %q, want species-31", results[0].Name)
	}
}

func TestFetchAll_DefaultsAndValidation(t *testing.T) {
	fake := newFakeCatalog(10)
	collector := NewCollector(fake, Config{})

	if collector.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", collector.PageSize(), DefaultPageSize)
	}
	if _, err := collector.FetchAll(context.Background(), 0, 0); err != nil {
		t.Errorf("FetchAll(0) error = %v", err)
	}
	if _, err := collector.FetchAll(context.Background(), -1, 0); err == nil {
		t.Error("FetchAll(-1) expected error")
	}
	if _, err := collector.FetchAll(context.Background(), 10, -5); err == nil {
		t.Error("FetchAll(offset -5) expected error")
	}
}
