package fx

import (
	"keystone-tracker/internal/api"
	"keystone-tracker/internal/config"
	"keystone-tracker/internal/database"
	"keystone-tracker/internal/domain"
	"keystone-tracker/internal/logger"
	"keystone-tracker/internal/report"
	"keystone-tracker/internal/repository"
	"keystone-tracker/internal/roster"
	"keystone-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideLogger builds the application logger at the configured level.
// config.Load already validated the level; anything unparseable falls back
// to info.
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.SetLevel(level)
}

func ProvideRoster(source *roster.FileSource) domain.PlayerListSource {
	return source
}

func ProvideFetcher(fetcher *service.Fetcher) domain.ProfileFetcher {
	return fetcher
}

func ProvideSink(sink *report.ExcelSink) domain.ReportSink {
	return sink
}

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(ProvideLogger),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewProfileRepository),
	// api client
	fx.Provide(api.NewRaiderIOClient),
	// collaborators
	fx.Provide(roster.NewFileSource, ProvideRoster),
	fx.Provide(report.NewExcelSink, ProvideSink),
	// svc
	fx.Provide(service.NewFetcher, ProvideFetcher),
	fx.Provide(service.NewNormalizer),
	fx.Provide(service.NewAggregator),
	fx.Provide(service.NewPipeline),
)
