package internal

import (
	"net/http"
	"pulsed/internal/controllers"
	"pulsed/internal/providers"
	"pulsed/internal/structures"
)

func InitRoutes(ingestController *controllers.IngestController, statusController *controllers.StatusController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/api/ingest", http.HandlerFunc(ingestController.Accept))
	routers.Get("/api/status/latest", http.HandlerFunc(statusController.Latest))
	routers.Get("/api/status/latest/by-key", http.HandlerFunc(statusController.LatestByKey))
	return routers
}
