package search

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Sternrassler/pokedex-client/pkg/presenter"
)

// Renderer owns the display surface. Every call carries the generation it
// belongs to; Reset starts a new one.
type Renderer interface {
	Reset(gen uint64)
	Detail(gen uint64, d presenter.Display)
	Heading(gen uint64, heading string)
	Card(gen uint64, index int, d presenter.Display)
	Notice(gen uint64, notice string)
	Error(gen uint64, message string)
}

type card struct {
	index   int
	display presenter.Display
}

// Surface is an in-memory Renderer that accumulates the results of the
// current generation. Writes for any other generation are dropped.
type Surface struct {
	mu      sync.RWMutex
	gen     uint64
	detail  *presenter.Display
	heading string
	cards   []card
	notice  string
	errMsg  string
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Reset implements Renderer. The surface adopts gen even when it is lower
// than the current one, which happens after the counter restarts.
func (s *Surface) Reset(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen = gen
	s.detail = nil
	s.heading = ""
	s.cards = nil
	s.notice = ""
	s.errMsg = ""
}

// Detail implements Renderer.
func (s *Surface) Detail(gen uint64, d presenter.Display) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.detail = &d
}

// Heading implements Renderer.
func (s *Surface) Heading(gen uint64, heading string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.heading = heading
}

// Card implements Renderer.
func (s *Surface) Card(gen uint64, index int, d presenter.Display) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.cards = append(s.cards, card{index: index, display: d})
}

// Notice implements Renderer.
func (s *Surface) Notice(gen uint64, notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.notice = notice
}

// Error implements Renderer.
func (s *Surface) Error(gen uint64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.errMsg = message
}

// Generation returns the generation currently displayed.
func (s *Surface) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Cards returns the list cards in completion order, or in request order
// when ordered is true.
func (s *Surface) Cards(ordered bool) []presenter.Display {
	s.mu.RLock()
	cards := append([]card(nil), s.cards...)
	s.mu.RUnlock()

	if ordered {
		sort.SliceStable(cards, func(i, j int) bool { return cards[i].index < cards[j].index })
	}
	out := make([]presenter.Display, len(cards))
	for i, c := range cards {
		out[i] = c.display
	}
	return out
}

// View snapshots the surface into a page view. Cards are in request order.
func (s *Surface) View() presenter.View {
	cards := s.Cards(true)

	s.mu.RLock()
	defer s.mu.RUnlock()
	v := presenter.View{
		Heading: s.heading,
		Cards:   cards,
		Notice:  s.notice,
		Error:   s.errMsg,
	}
	if s.detail != nil {
		d := *s.detail
		v.Detail = &d
	}
	return v
}

// TextRenderer streams results to a writer as they arrive. It is meant for
// a single search at a time and ignores generations.
type TextRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTextRenderer creates a renderer writing to out.
func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{out: out}
}

// Reset implements Renderer.
func (r *TextRenderer) Reset(uint64) {}

// Detail implements Renderer.
func (r *TextRenderer) Detail(_ uint64, d presenter.Display) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = presenter.WriteDetail(r.out, d)
}

// Heading implements Renderer.
func (r *TextRenderer) Heading(_ uint64, heading string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s\n", heading)
}

// Card implements Renderer.
func (r *TextRenderer) Card(_ uint64, _ int, d presenter.Display) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = presenter.WriteCard(r.out, d)
}

// Notice implements Renderer.
func (r *TextRenderer) Notice(_ uint64, notice string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "(%s)\n", notice)
}

// Error implements Renderer.
func (r *TextRenderer) Error(_ uint64, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "error: %s\n", message)
}
