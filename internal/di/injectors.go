//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"pulsed/internal"
	"pulsed/internal/controllers"
	"pulsed/internal/journal"
	"pulsed/internal/providers"
	"pulsed/internal/services"
	"pulsed/internal/stream"
	"pulsed/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,

		stream.NewRegistry,
		wire.Bind(new(providers.StreamStatsSource), new(*stream.Registry)),
		wire.Bind(new(services.Broadcaster), new(*stream.Registry)),

		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewIdentityProvider,

		journal.NewZstdCompressor,
		journal.NewJournal,
		journal.NewScheduler,

		services.NewIngestService,
		services.NewStatusService,

		controllers.NewIngestController,
		controllers.NewStatusController,
		controllers.NewStreamController,
		controllers.NewWsController,
		controllers.NewHealthController,

		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
