package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"lexi-leaderboard/internal/domain"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// TopAllLevels fetches every level of a (game, mode) pair concurrently.
func (c *Client) TopAllLevels(ctx context.Context, game, mode string, limit int) (map[string]*TopResponse, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]*TopResponse, len(domain.AllowedLevels))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, level := range domain.AllowedLevels {
		level := level
		g.Go(func() error {
			top, err := c.Top(ctx, game, mode, level, limit)
			if err != nil {
				return fmt.Errorf("failed to fetch level %s: %w", level, err)
			}
			mu.Lock()
			results[level] = top
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ReplayLimiter paces submissions to the server's per-client budget:
// a burst of max, refilled evenly over window.
func ReplayLimiter(max int, window time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(window/time.Duration(max)), max)
}

type ReplaySummary struct {
	Submitted int
	Failed    int
	Skipped   int
}

const replayMaxAttempts = 3

// Replay submits one JSON submission per line of r. Blank lines and lines
// starting with '#' are ignored, undecodable lines are skipped. A rate
// limited submission waits for the advertised Retry-After and is retried.
func (c *Client) Replay(ctx context.Context, r io.Reader, limiter *rate.Limiter, logger zerolog.Logger) (ReplaySummary, error) {
	var summary ReplaySummary

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var sub Submission
		if err := json.Unmarshal([]byte(text), &sub); err != nil {
			logger.Warn().Int("line", line).Err(err).Msg("skipping undecodable line")
			summary.Skipped++
			continue
		}

		res, err := c.submitPaced(ctx, sub, limiter)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Warn().Int("line", line).Str("name", sub.Name).Err(err).Msg("submission failed")
			summary.Failed++
			continue
		}

		event := logger.Info().Int("line", line).Str("name", res.Entry.Name).Int("score", res.Entry.Score)
		if res.Rank != nil {
			event = event.Int("rank", *res.Rank)
		}
		event.Msg("submitted")
		summary.Submitted++
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read replay input: %w", err)
	}
	return summary, nil
}

func (c *Client) submitPaced(ctx context.Context, sub Submission, limiter *rate.Limiter) (*SubmitResponse, error) {
	var lastErr error
	for attempt := 0; attempt < replayMaxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := c.Submit(ctx, sub)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusTooManyRequests {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(apiErr.RetryAfter):
		}
	}
	return nil, lastErr
}
