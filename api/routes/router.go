package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kingsofalchemy/ordertracker-backend/api/controllers"
	"github.com/kingsofalchemy/ordertracker-backend/api/middleware"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

// NewRouter wires the HTTP surface. Nil snapshot/catalog dependencies are
// tolerated; the order board then always fetches live and serves orders
// without cost figures.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	fetcher controllers.OrderFetcher,
	snapshot controllers.SnapshotStore,
	catalogRepo controllers.CatalogLoader,
	tokenSaver controllers.TokenSaver,
	readiness map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/orders", controllers.ListOrders(fetcher, snapshot, catalogRepo, logg))
		r.Post("/etsy/token", controllers.SaveEtsyToken(tokenSaver, logg))
	})

	return r
}
