package service

import (
	"context"
	"fmt"
	"lexi-leaderboard/internal/domain"
	"lexi-leaderboard/internal/repository"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type LeaderboardService struct {
	scores  *repository.ScoreRepository
	limiter *repository.RateLimitRepository
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() (string, error)
}

func NewLeaderboardService(scores *repository.ScoreRepository, limiter *repository.RateLimitRepository, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{
		scores:  scores,
		limiter: limiter,
		logger:  logger.With().Str("component", "leaderboard_service").Logger(),
		now:     time.Now,
		newID:   func() (string, error) { return gonanoid.New() },
	}
}

func (s *LeaderboardService) WithClock(now func() time.Time) *LeaderboardService {
	s.now = now
	return s
}

// RetryAfter is the back-off advertised to rate limited clients.
func (s *LeaderboardService) RetryAfter() time.Duration {
	return s.limiter.Window()
}

// Submit validates a submission, charges the client's rate-limit bucket,
// stores the entry and returns its rank right after insertion. Nothing is
// written when validation fails or the client is over its limit.
func (s *LeaderboardService) Submit(ctx context.Context, sub domain.Submission, clientID string) (*domain.SubmitResult, error) {
	lbCtx, err := domain.ValidateContext(sub.Game, sub.Mode, sub.Level)
	if err != nil {
		return nil, err
	}

	name := domain.SanitizeName(sub.Name)
	if name == "" {
		return nil, &domain.ValidationError{Code: domain.CodeNameRequired}
	}
	score := domain.ClampScore(sub.Score)
	if score <= 0 {
		return nil, &domain.ValidationError{Code: domain.CodeScoreRequired}
	}

	allowed, err := s.limiter.CheckAndIncrement(ctx, lbCtx, clientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Info().Str("context", lbCtx.String()).Str("client_id", clientID).Msg("submission rate limited")
		return nil, domain.ErrRateLimited
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}
	timestamp := s.now().UnixMilli()
	entry := domain.Entry{ID: id, Name: name, Score: score, Timestamp: &timestamp}

	updated, err := s.scores.Append(ctx, lbCtx, entry)
	if err != nil {
		return nil, err
	}

	rank := domain.RankOf(domain.Rank(updated), id)

	event := s.logger.Info().Str("context", lbCtx.String()).Int("score", score).Int("entries", len(updated))
	if rank != nil {
		event = event.Int("rank", *rank)
	}
	event.Msg("score submitted")

	return &domain.SubmitResult{Entry: entry, Rank: rank}, nil
}

// Top returns the best limit entries of a context. limit is expected to be
// already clamped.
func (s *LeaderboardService) Top(ctx context.Context, game, mode, level string, limit int) ([]domain.RankedEntry, error) {
	lbCtx, err := domain.ValidateContext(game, mode, level)
	if err != nil {
		return nil, err
	}

	entries, err := s.scores.Read(ctx, lbCtx)
	if err != nil {
		return nil, err
	}

	ranked := domain.Rank(entries)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	s.logger.Debug().Str("context", lbCtx.String()).Int("limit", limit).Int("results", len(ranked)).Msg("top scores read")
	return ranked, nil
}
