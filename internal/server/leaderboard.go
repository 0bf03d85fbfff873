package server

import (
	"errors"
	"io"
	"lexi-leaderboard/internal/constants"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/metrics"
	"lexi-leaderboard/internal/middleware"
	"lexi-leaderboard/internal/response"
	"lexi-leaderboard/internal/service"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type LeaderboardServer struct {
	svc     *service.LeaderboardService
	metrics *metrics.Metrics
}

func NewLeaderboardServer(svc *service.LeaderboardService, m *metrics.Metrics) *LeaderboardServer {
	return &LeaderboardServer{svc: svc, metrics: m}
}

type topResult struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Timestamp *int64 `json:"timestamp"`
	Rank      int    `json:"rank"`
}

type topResponse struct {
	Results []topResult `json:"results"`
}

type submittedEntry struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

type submitResponse struct {
	OK    bool           `json:"ok"`
	Rank  *int           `json:"rank"`
	Entry submittedEntry `json:"entry"`
}

func (s *LeaderboardServer) GetTop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := domain.ClampLimit(parseNumber(q.Get("limit")))

	ranked, err := s.svc.Top(r.Context(), q.Get("game"), q.Get("mode"), q.Get("level"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results := lo.Map(ranked, func(e domain.RankedEntry, _ int) topResult {
		return topResult{Name: e.Name, Score: e.Score, Timestamp: e.Timestamp, Rank: e.Rank}
	})
	response.JSON(w, r, http.StatusOK, topResponse{Results: results})
}

func (s *LeaderboardServer) PostScore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes))
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("failed to read request body")
		s.metrics.Submission("rejected")
		response.Error(w, r, http.StatusBadRequest, domain.CodeInvalidJSON)
		return
	}

	sub, err := domain.DecodeSubmission(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Submit(r.Context(), sub, middleware.ClientID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.Submission("accepted")
	response.JSON(w, r, http.StatusOK, submitResponse{
		OK:   true,
		Rank: res.Rank,
		Entry: submittedEntry{
			Name:      res.Entry.Name,
			Score:     res.Entry.Score,
			Timestamp: *res.Entry.Timestamp,
		},
	})
}

func (s *LeaderboardServer) NotFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, http.StatusNotFound, domain.CodeNotFound)
}

func (s *LeaderboardServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if code, ok := domain.CodeOf(err); ok {
		if r.Method == http.MethodPost {
			s.metrics.Submission("rejected")
		}
		response.Error(w, r, http.StatusBadRequest, code)
		return
	}

	if errors.Is(err, domain.ErrRateLimited) {
		s.metrics.Submission("rate_limited")
		retryAfter := int(s.svc.RetryAfter().Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		response.Error(w, r, http.StatusTooManyRequests, domain.CodeRateLimited)
		return
	}

	if r.Method == http.MethodPost {
		s.metrics.Submission("error")
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	response.Error(w, r, http.StatusInternalServerError, domain.CodeInternal)
}

// parseNumber is lenient: anything unparsable yields 0, which callers treat
// as "use the default".
func parseNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}
