package middleware

import (
	"lexi-leaderboard/internal/config"
	"lexi-leaderboard/internal/constants"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/response"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// NewCORS builds the origin policy. Without an allow-list every origin is
// echoed back; a "*" entry answers with a wildcard.
func NewCORS(cfg *config.Config, logger zerolog.Logger) *cors.Cors {
	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         constants.PreflightMaxAge,

		OptionsSuccessStatus: http.StatusNoContent,
	}
	if len(cfg.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return true }
	}
	if cfg.CORSDebug {
		corsLogger := logger.With().Str("component", "cors").Logger()
		opts.Debug = true
		opts.Logger = &corsLogger
	}
	return cors.New(opts)
}

// CORS rejects disallowed origins before anything else runs, answers every
// OPTIONS request itself and decorates all other responses.
func CORS(c *cors.Cors) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		decorated := c.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Origin") != "" && !c.OriginAllowed(r) {
				zerolog.Ctx(r.Context()).Info().Str("origin", r.Header.Get("Origin")).Msg("origin rejected")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				response.Error(w, r, http.StatusForbidden, domain.CodeOriginNotAllowed)
				return
			}

			if r.Method == http.MethodOptions {
				sw := &statusWriter{ResponseWriter: w}
				c.HandlerFunc(sw, r)
				sw.WriteHeader(http.StatusNoContent)
				return
			}

			decorated.ServeHTTP(w, r)
		})
	}
}
