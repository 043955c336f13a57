// internal/httpserver/server.go
//
// HTTP server wiring for the artwork guessing game.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging).
//   - Public endpoints: "/" (game page), "/health", "/config", "/metrics".
//   - Round endpoints (player cookie): mounted under /round.
//   - Suggestion endpoint: GET /suggest.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every visitor gets a signed player cookie; it keys their session.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wheelyhard/assets"
	"github.com/robalobadob/wheelyhard/internal/config"
	"github.com/robalobadob/wheelyhard/internal/game"
	"github.com/robalobadob/wheelyhard/internal/reveal"
	"github.com/robalobadob/wheelyhard/internal/store"
	"github.com/robalobadob/wheelyhard/internal/suggest"
)

// ArtworkSource downloads artwork bytes for a card.
type ArtworkSource interface {
	Artwork(ctx context.Context, url string) ([]byte, error)
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Store     store.Store
	Cards     game.CardFetcher
	Artwork   ArtworkSource
	Suggester *suggest.Suggester
	Renderer  reveal.Renderer
}

// Server bundles router, session store and game collaborators.
type Server struct {
	r   *chi.Mux
	cfg *config.Config
	Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, Deps: deps}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(15 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- page + diagnostics ---
	s.r.Get("/", s.handleIndex)
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/config", s.handleConfig)
	s.r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Game endpoints, keyed by the player cookie.
	s.mountRound(s.r.With(s.withPlayer))
	s.r.Get("/suggest", s.handleSuggest)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog logs method, path, status and duration through the request logger.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.InfoLevel
	if status >= 500 {
		lvl = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("reqId", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("took", d).
		Msg("request")
})

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- pages -------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.Index()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("read index page")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "index_missing"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// configRes tells the page which variant to present.
type configRes struct {
	ShowSuggestions  bool `json:"showSuggestions"`
	SuggestMinLength int  `json:"suggestMinLength"`
	MaxReveal        int  `json:"maxReveal"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configRes{
		ShowSuggestions:  s.Suggester.Enabled(),
		SuggestMinLength: s.Suggester.MinLength(),
		MaxReveal:        s.Renderer.MaxLevel,
	})
}

// ------------------------------ helpers ------------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
