package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/export"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/Sternrassler/pokedex-client/pkg/presenter"
	"github.com/Sternrassler/pokedex-client/pkg/search"
)

// contextNames lists the search contexts in button order.
var contextNames = func() []string {
	out := make([]string, len(pokedex.Contexts))
	for i, c := range pokedex.Contexts {
		out[i] = string(c)
	}
	return out
}()

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, s.session(w, r))
}

// searchContext parses the context parameter. Unknown values are passed
// through so the session reports them as InvalidContext.
func searchContext(r *http.Request) pokedex.SearchContext {
	raw := r.URL.Query().Get("context")
	if c, err := pokedex.ParseContext(raw); err == nil {
		return c
	}
	return pokedex.SearchContext(raw)
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	e := s.session(w, r)
	// Failures are already on the surface.
	_, _ = e.session.Search(r.Context(), searchContext(r), r.URL.Query().Get("term"))
	s.renderPage(w, e)
}

func (s *Server) handleAllPage(w http.ResponseWriter, r *http.Request) {
	e := s.session(w, r)
	_, _ = e.session.All(r.Context())
	s.renderPage(w, e)
}

func (s *Server) handleRandomPage(w http.ResponseWriter, r *http.Request) {
	e := s.session(w, r)
	_, _ = e.session.Random(r.Context())
	s.renderPage(w, e)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	e := s.session(w, r)
	if err := e.session.Clear(r.Context()); err != nil {
		s.logger.Error().Err(err).Str("session", e.id).Msg("Clear failed")
		http.Error(w, "could not clear results", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, e *sessionEntry) {
	v := e.surface.View()
	v.Contexts = contextNames
	c, term := e.session.Query()
	v.Context, v.Term = string(c), term
	v.Loading = e.session.Loading()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := presenter.RenderPage(w, v); err != nil {
		s.logger.Error().Err(err).Msg("Page render failed")
	}
}

// searchResponse is the JSON body of /api/search and /api/random.
type searchResponse struct {
	Outcome *search.Outcome `json:"outcome,omitempty"`
	View    presenter.View  `json:"view"`
	Error   *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Class   pokedex.ErrorClass `json:"class"`
	Message string             `json:"message"`
}

func (s *Server) handleSearchAPI(w http.ResponseWriter, r *http.Request) {
	e := s.session(w, r)
	out, err := e.session.Search(r.Context(), searchContext(r), r.URL.Query().Get("term"))
	s.respondSearch(w, e, out, err)
}

func (s *Server) handleAllAPI(w http.ResponseWriter, r *http.Request) {
	e := s.session(w, r)
	out, err := e.session.All(r.Context())
	s.respondSearch(w, e, out, err)
}

func (s *Server) handleRandomAPI(w http.ResponseWriter, r *http.Request) {
	e := s.session(w, r)
	out, err := e.session.Random(r.Context())
	s.respondSearch(w, e, out, err)
}

func (s *Server) respondSearch(w http.ResponseWriter, e *sessionEntry, out *search.Outcome, err error) {
	resp := searchResponse{Outcome: out, View: e.surface.View()}
	status := http.StatusOK
	if err != nil {
		resp.Error = &apiError{Class: pokedex.ClassOf(err), Message: pokedex.UserMessage(err)}
		status = statusFor(err)
	}
	respondJSON(w, status, resp)
}

// statusFor maps an error class to an HTTP status.
func statusFor(err error) int {
	switch pokedex.ClassOf(err) {
	case pokedex.ErrorClassInvalidContext, pokedex.ErrorClassEmptyInput:
		return http.StatusBadRequest
	case pokedex.ErrorClassNotFound, pokedex.ErrorClassEmptyResultSet:
		return http.StatusNotFound
	case pokedex.ErrorClassNetwork, pokedex.ErrorClassMalformedResponse:
		return http.StatusBadGateway
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// handleCatalog streams the full species catalog as json (default), csv
// or parquet.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageSize := 0
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondJSON(w, http.StatusBadRequest, apiError{Message: "page_size must be a positive integer"})
			return
		}
		pageSize = n
	}

	format := q.Get("format")
	var f export.Format
	if format != "" && format != "json" {
		var err error
		if f, err = export.ParseFormat(format); err != nil {
			respondJSON(w, http.StatusBadRequest, apiError{Message: err.Error()})
			return
		}
	}

	e := s.session(w, r)
	refs, err := e.session.Catalog(r.Context(), pageSize)
	if err != nil {
		respondJSON(w, statusFor(err), apiError{Class: pokedex.ClassOf(err), Message: pokedex.UserMessage(err)})
		return
	}

	switch f {
	case "":
		respondJSON(w, http.StatusOK, map[string]any{"count": len(refs), "results": refs})
		return
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case export.FormatParquet:
		w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="catalog.%s"`, f))
	if err := export.Write(w, f, export.Rows(refs)); err != nil {
		s.logger.Error().Err(err).Str("format", string(f)).Msg("Catalog export failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleReady reports whether the generation store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ready", "sessions": s.sessions.count()}
	if s.opts.Redis == nil {
		status["generations"] = "memory"
		respondJSON(w, http.StatusOK, status)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.opts.Redis.Ping(ctx).Err(); err != nil {
		status["status"] = "unavailable"
		status["generations"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status["generations"] = "redis"
	respondJSON(w, http.StatusOK, status)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
