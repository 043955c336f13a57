// internal/httpserver/routes_suggest.go
//
// GET /suggest?q=… → {"suggestions": [...]}

package httpserver

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wheelyhard/internal/metrics"
)

type suggestRes struct {
	Suggestions []string `json:"suggestions"`
}

// handleSuggest returns candidate names for ?q=. Short or disabled queries
// return an empty list without touching the upstream service.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	names, err := s.Suggester.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("suggest").Inc()
		hlog.FromRequest(r).Warn().Err(err).Msg("suggest")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "fetch_failed"})
		return
	}
	writeJSON(w, http.StatusOK, suggestRes{Suggestions: names})
}
