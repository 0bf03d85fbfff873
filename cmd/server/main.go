package main

import (
	"context"
	"errors"
	"fmt"
	"lexi-leaderboard/internal/config"
	"lexi-leaderboard/internal/constants"
	fxmodules "lexi-leaderboard/internal/fx"
	"lexi-leaderboard/internal/metrics"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	handler http.Handler,
	m *metrics.Metrics,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	servers := []*http.Server{{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsPort != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", m.Handler())
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.MetricsPort),
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, srv := range servers {
				srv := srv
				go func() {
					logger.Info().Str("addr", srv.Addr).Msg("server starting")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Fatal().Err(err).Str("addr", srv.Addr).Msg("server failed")
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			var g errgroup.Group
			for _, srv := range servers {
				srv := srv
				g.Go(func() error {
					return srv.Shutdown(shutdownCtx)
				})
			}
			if err := g.Wait(); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
