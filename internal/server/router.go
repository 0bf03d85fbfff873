package server

import (
	"lexi-leaderboard/internal/metrics"
	"lexi-leaderboard/internal/middleware"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const (
	RouteTop   = "/top"
	RouteScore = "/score"
)

func normalizePath(p string) string {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

func routeLabel(r *http.Request) string {
	switch p := normalizePath(r.URL.Path); p {
	case RouteTop, RouteScore:
		return p
	default:
		return "other"
	}
}

// NewRouter assembles the public API. Origin checks run before routing so
// they also cover 404s and OPTIONS on unknown paths.
func NewRouter(ls *LeaderboardServer, c *cors.Cors, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter().SkipClean(true)
	r.HandleFunc(RouteTop, ls.GetTop).Methods(http.MethodGet)
	r.HandleFunc(RouteScore, ls.PostScore).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(ls.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(ls.NotFound)

	routed := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r2 := new(http.Request)
		*r2 = *req
		r2.URL = new(url.URL)
		*r2.URL = *req.URL
		r2.URL.Path = normalizePath(req.URL.Path)
		r2.URL.RawPath = ""
		r.ServeHTTP(w, r2)
	})

	var h http.Handler = routed
	h = middleware.CORS(c)(h)
	h = m.Wrap(routeLabel, h)
	h = middleware.Recover(h)
	h = middleware.RequestID(logger)(h)
	return h
}
