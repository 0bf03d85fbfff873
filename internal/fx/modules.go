package fx

import (
	"lexi-leaderboard/internal/config"
	"lexi-leaderboard/internal/kv"
	"lexi-leaderboard/internal/logger"
	"lexi-leaderboard/internal/metrics"
	"lexi-leaderboard/internal/middleware"
	"lexi-leaderboard/internal/repository"
	"lexi-leaderboard/internal/server"
	"lexi-leaderboard/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	// storage
	fx.Provide(kv.New),
	// repos
	fx.Provide(repository.NewScoreRepository),
	fx.Provide(repository.ProvideRateLimitRepository),
	// svc
	fx.Provide(service.NewLeaderboardService),
	// server
	fx.Provide(metrics.New),
	fx.Provide(middleware.NewCORS),
	fx.Provide(server.NewLeaderboardServer),
	fx.Provide(server.NewRouter),
)
