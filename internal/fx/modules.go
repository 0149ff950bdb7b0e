package fx

import (
	"youtube-tracker/internal/api"
	"youtube-tracker/internal/config"
	"youtube-tracker/internal/database"
	"youtube-tracker/internal/logger"
	"youtube-tracker/internal/report"
	"youtube-tracker/internal/repository"
	"youtube-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// DecorateLogger applies the configured level and a per-run id.
func DecorateLogger(l zerolog.Logger, cfg *config.Config) (zerolog.Logger, error) {
	return logger.ForRun(l, cfg.LogLevel)
}

// Config loads with the base logger; everything in the tracker module sees the
// decorated one.
var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Module("tracker",
		fx.Decorate(DecorateLogger),
		fx.Provide(database.New),
		// repos
		fx.Provide(repository.NewSnapshotStore),
		fx.Provide(repository.NewArchiveRepository),
		// api client
		fx.Provide(fx.Annotate(api.NewYouTubeClient, fx.As(new(service.ViewCounter)))),
		// report
		fx.Provide(report.NewRenderer),
		// svc
		fx.Provide(service.NewCollector),
		fx.Provide(service.NewReporter),
		fx.Provide(service.NewPipeline),
	),
)
