package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/generation"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/search"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionCookie carries the browser session id.
const SessionCookie = "pokedex_session"

type sessionEntry struct {
	id       string
	session  *search.Session
	surface  *search.Surface
	counter  generation.Counter
	lastSeen time.Time
}

// sessionStore maps session ids to their search session and surface.
// Idle entries are swept on access.
type sessionStore struct {
	opts       Options
	now        func() time.Time
	newCounter func(id string) generation.Counter
	logger     zerolog.Logger

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func newSessionStore(opts Options) *sessionStore {
	st := &sessionStore{
		opts:    opts,
		now:     time.Now,
		logger:  logging.NewLogger(logging.ComponentServer),
		entries: make(map[string]*sessionEntry),
	}
	st.newCounter = st.counter
	return st
}

// get returns the session for id, creating it when id is unknown or empty.
// A known session also has the expiry of its generation store extended so
// it cannot lapse while the session is still in use.
func (st *sessionStore) get(ctx context.Context, id string) *sessionEntry {
	e, known := st.lookup(id)
	if !known {
		return e
	}
	if t, ok := e.counter.(generation.Toucher); ok {
		if err := t.Touch(ctx); err != nil {
			st.logger.Warn().Err(err).Str("session", e.id).Msg("Generation expiry refresh failed")
		}
	}
	return e
}

func (st *sessionStore) lookup(id string) (*sessionEntry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	for k, e := range st.entries {
		if now.Sub(e.lastSeen) > st.opts.SessionTTL {
			delete(st.entries, k)
		}
	}

	if e, ok := st.entries[id]; ok && id != "" {
		e.lastSeen = now
		return e, true
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	e := &sessionEntry{id: id, surface: search.NewSurface(), counter: st.newCounter(id), lastSeen: now}
	e.session = search.NewSession(st.opts.Client.Resolver(), st.opts.Client, e.surface, search.Options{
		Generations:    e.counter,
		MaxConcurrency: st.opts.MaxConcurrency,
		PageSize:       st.opts.PageSize,
	})
	st.entries[id] = e
	return e, false
}

func (st *sessionStore) counter(id string) generation.Counter {
	if st.opts.Redis == nil {
		return generation.NewMemoryCounter()
	}
	return generation.NewRedisCounter(st.opts.Redis, id, st.opts.SessionTTL)
}

func (st *sessionStore) count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// session resolves the request's session and refreshes its cookie.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *sessionEntry {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	e := s.sessions.get(r.Context(), id)
	if e.id != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    e.id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(s.opts.SessionTTL.Seconds()),
		})
	}
	return e
}
