package search

import "sync"

// Spinner is a loading indicator.
type Spinner interface {
	Show()
	Hide()
}

// NopSpinner ignores every call.
type NopSpinner struct{}

func (NopSpinner) Show() {}
func (NopSpinner) Hide() {}

// spinnerGate binds a Spinner to in-flight searches: it is shown when the
// first search dispatches and hidden when the last one settles.
type spinnerGate struct {
	mu      sync.Mutex
	active  int
	spinner Spinner
}

func newSpinnerGate(s Spinner) *spinnerGate {
	if s == nil {
		s = NopSpinner{}
	}
	return &spinnerGate{spinner: s}
}

func (g *spinnerGate) dispatch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active++
	if g.active == 1 {
		g.spinner.Show()
	}
}

func (g *spinnerGate) settle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == 0 {
		return
	}
	g.active--
	if g.active == 0 {
		g.spinner.Hide()
	}
}

func (g *spinnerGate) loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active > 0
}
