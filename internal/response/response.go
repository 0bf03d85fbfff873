package response

import (
	"encoding/json"
	"lexi-leaderboard/internal/domain"
	"net/http"

	"github.com/rs/zerolog"
)

type ErrorBody struct {
	Error domain.ErrorCode `json:"error"`
}

// JSON writes payload with the headers every API response carries. Rankings
// must never be served from an intermediate cache.
func JSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	if h.Get("Cache-Control") == "" {
		h.Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, code domain.ErrorCode) {
	JSON(w, r, status, ErrorBody{Error: code})
}
