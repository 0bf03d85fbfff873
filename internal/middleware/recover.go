package middleware

import (
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/response"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover turns a panic into a logged 500 without leaking details.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zerolog.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			response.Error(w, r, http.StatusInternalServerError, domain.CodeInternal)
		}()
		next.ServeHTTP(w, r)
	})
}
