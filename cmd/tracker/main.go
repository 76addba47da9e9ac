package main

import (
	"context"
	"database/sql"

	"keystone-tracker/internal/constants"
	fxmodules "keystone-tracker/internal/fx"
	"keystone-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runPipeline),
	).Run()
}

// runPipeline executes one report run and shuts the app down when it
// finishes; a failed run exits non-zero.
func runPipeline(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	pipeline *service.Pipeline,
	db *sql.DB,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				runCtx, cancel := context.WithTimeout(context.Background(), constants.PipelineTimeout)
				defer cancel()

				if err := pipeline.Run(runCtx); err != nil {
					logger.Error().Err(err).Msg("pipeline run failed")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("tracker stopped")
			return nil
		},
	})
}
