package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/search"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// terminalSpinner animates a loading line on w until hidden.
type terminalSpinner struct {
	w        io.Writer
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// newTerminalSpinner returns a spinner on w, or a no-op one when w is not
// a terminal.
func newTerminalSpinner(w io.Writer) search.Spinner {
	f, ok := w.(*os.File)
	if !ok {
		return search.NopSpinner{}
	}
	if fi, err := f.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return search.NopSpinner{}
	}
	return &terminalSpinner{w: w, interval: 100 * time.Millisecond}
}

func (s *terminalSpinner) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *terminalSpinner) Hide() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (s *terminalSpinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%s Loading…", spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-stop:
			fmt.Fprint(s.w, "\r           \r")
			return
		case <-ticker.C:
		}
	}
}
