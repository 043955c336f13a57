// internal/httpserver/routes_round.go
//
// HTTP routes for playing a round.
// Exposes, under /round:
//   - POST /round/new         → start (or restart) a round with a random card
//   - GET  /round             → current round state
//   - POST /round/guess       → submit a guess
//   - GET  /round/artwork.png → artwork masked at the current reveal level
//
// Each player owns exactly one session; starting a round abandons any
// round in progress. The card name is only disclosed once the round is over
// (or as a fallback when its artwork cannot be shown).

package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wheelyhard/internal/game"
	"github.com/robalobadob/wheelyhard/internal/metrics"
	"github.com/robalobadob/wheelyhard/internal/reveal"
)

// outcomeIgnored is reported for blank guesses and guesses outside a round.
const outcomeIgnored game.OutcomeKind = "ignored"

// mountRound registers all /round routes.
func (s *Server) mountRound(r chi.Router) {
	r.Route("/round", func(r chi.Router) {
		r.Get("/", s.handleRound)
		r.Post("/new", s.handleNewRound)
		r.Post("/guess", s.handleGuess)
		r.Get("/artwork.png", s.handleArtwork)
	})
}

func (s *Server) session(r *http.Request) *game.Session {
	return s.Store.Session(r.Context(), playerID(r))
}

// roundRes is the public view of a session.
type roundRes struct {
	Status      game.Status `json:"status"`
	Attempts    int         `json:"attempts"`
	RevealLevel int         `json:"revealLevel"`
	MaxReveal   int         `json:"maxReveal"`
	HasArtwork  bool        `json:"hasArtwork"`
	Card        string      `json:"card,omitempty"` // only once terminal
}

func viewOf(st game.State) roundRes {
	res := roundRes{
		Status:      st.Status,
		Attempts:    st.Attempts,
		RevealLevel: st.RevealLevel,
		MaxReveal:   st.MaxReveal,
	}
	if st.Card != nil {
		res.HasArtwork = st.Card.ArtworkURL != ""
		if st.Status.Terminal() {
			res.Card = st.Card.Name
		}
	}
	return res
}

// -----------------------------------------------------------------------------
// GET /round

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.session(r).Snapshot()))
}

// -----------------------------------------------------------------------------
// POST /round/new

// handleNewRound draws a new card. On failure the previous round is kept and
// the page may simply retry.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	err := sess.StartRound(r.Context(), s.Cards)
	switch {
	case errors.Is(err, game.ErrSuperseded):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "superseded"})
		return
	case err != nil:
		metrics.UpstreamFailures.WithLabelValues("card").Inc()
		hlog.FromRequest(r).Warn().Err(err).Msg("start round")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "fetch_failed"})
		return
	}
	metrics.RoundsStarted.Inc()
	writeJSON(w, http.StatusOK, viewOf(sess.Snapshot()))
}

// -----------------------------------------------------------------------------
// POST /round/guess

// maxGuessBody bounds the guess request body.
const maxGuessBody = 4 << 10

type guessReq struct {
	Guess string `json:"guess"`
}

type guessRes struct {
	game.Outcome
	State roundRes `json:"state"`
}

// handleGuess applies a guess. Blank guesses and guesses outside a round
// are answered with outcome "ignored" and consume nothing.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGuessBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}

	out, st, err := s.session(r).Guess(req.Guess)
	if errors.Is(err, game.ErrInvalidGuess) {
		writeJSON(w, http.StatusOK, guessRes{Outcome: game.Outcome{Kind: outcomeIgnored}, State: viewOf(st)})
		return
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("submit guess")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "guess_failed"})
		return
	}

	metrics.Guesses.Inc()
	if out.Kind == game.OutcomeWon || out.Kind == game.OutcomeLost {
		metrics.RoundsFinished.WithLabelValues(string(out.Kind)).Inc()
		hlog.FromRequest(r).Info().Str("outcome", string(out.Kind)).Int("attempts", st.Attempts).Msg("round finished")
	}
	writeJSON(w, http.StatusOK, guessRes{Outcome: out, State: viewOf(st)})
}

// -----------------------------------------------------------------------------
// GET /round/artwork.png

// handleArtwork renders the current card's artwork at the current reveal level.
// Missing, unreachable or corrupt artwork is reported as decode_failed together
// with the card name, so the page can show the name instead of an image.
func (s *Server) handleArtwork(w http.ResponseWriter, r *http.Request) {
	st := s.session(r).Snapshot()
	if st.Card == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no_round"})
		return
	}

	body, err := s.renderArtwork(r, st)
	if err != nil {
		if !errors.Is(err, reveal.ErrDecodeFailed) {
			metrics.UpstreamFailures.WithLabelValues("artwork").Inc()
		}
		metrics.DecodeFailures.Inc()
		hlog.FromRequest(r).Warn().Err(err).Str("card", st.Card.Name).Msg("artwork")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "decode_failed", "card": st.Card.Name})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

// renderArtwork fetches, decodes, masks and PNG-encodes the artwork.
func (s *Server) renderArtwork(r *http.Request, st game.State) ([]byte, error) {
	if st.Card.ArtworkURL == "" {
		return nil, fmt.Errorf("%w: card has no artwork", reveal.ErrDecodeFailed)
	}
	raw, err := s.Artwork.Artwork(r.Context(), st.Card.ArtworkURL)
	if err != nil {
		return nil, err
	}
	src, err := reveal.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	out, err := s.Renderer.RenderImage(src, st.RevealLevel)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
