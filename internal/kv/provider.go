package kv

import (
	"context"
	"lexi-leaderboard/internal/config"
	"lexi-leaderboard/internal/database"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New opens the store selected by STORE_DRIVER and ties its lifetime to the
// application. The SQLite driver also runs a purge loop for expired keys.
func New(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "kv").Str("driver", cfg.StoreDriver).Logger()

	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn().Msg("using in-memory store, data will not survive restarts")
		return NewMemoryStore(), nil
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	store := NewSQLiteStore(db, logger)

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				runPurgeLoop(purgeCtx, store, cfg.PurgeInterval, logger)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopPurge()
			<-done
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
				return err
			}
			return nil
		},
	})

	return store, nil
}

func runPurgeLoop(ctx context.Context, store *SQLiteStore, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("started expired key purge loop")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := store.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("failed to purge expired keys")
			}
		}
	}
}
