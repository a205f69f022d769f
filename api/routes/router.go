package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mexilux/optica-backend/api/controllers"
	"github.com/mexilux/optica-backend/api/middleware"
	"github.com/mexilux/optica-backend/internal/cart"
	"github.com/mexilux/optica-backend/internal/catalog"
	"github.com/mexilux/optica-backend/internal/configurator"
	"github.com/mexilux/optica-backend/internal/prescriptions"
	"github.com/mexilux/optica-backend/pkg/config"
	"github.com/mexilux/optica-backend/pkg/db"
	"github.com/mexilux/optica-backend/pkg/logger"
	"github.com/mexilux/optica-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	prescriptionsService prescriptions.Service,
	configuratorService configurator.Service,
	cartService cart.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	wizardPolicy := middleware.NewRateLimitPolicy(
		"wizard",
		cfg.RateLimit.WizardWindow,
		cfg.RateLimit.WizardIPLimit,
		cfg.RateLimit.WizardCustomerLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/materials", controllers.CatalogMaterials(catalogService, logg))
		r.Get("/treatments", controllers.CatalogTreatments(catalogService, logg))
		r.Get("/usage-options", controllers.CatalogUsageOptions(catalogService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CustomerIdentity(logg))
		r.Use(middleware.RateLimit(wizardPolicy, redisClient, logg))

		r.Get("/ping", controllers.CustomerPing())

		r.Route("/prescriptions", func(r chi.Router) {
			r.Post("/", controllers.PrescriptionCreate(prescriptionsService, logg))
			r.Get("/", controllers.PrescriptionList(prescriptionsService, logg))
			r.Get("/{prescriptionId}", controllers.PrescriptionGet(prescriptionsService, logg))
			r.Delete("/{prescriptionId}", controllers.PrescriptionDelete(prescriptionsService, logg))
		})

		r.Route("/configurations", func(r chi.Router) {
			r.Post("/", controllers.ConfigurationStart(configuratorService, logg))
			r.Get("/{configurationId}", controllers.ConfigurationGet(configuratorService, logg))
			r.Post("/{configurationId}/usage-type", controllers.ConfigurationSetUsageType(configuratorService, logg))
			r.Post("/{configurationId}/prescription", controllers.ConfigurationSetPrescription(configuratorService, logg))
			r.Post("/{configurationId}/material", controllers.ConfigurationSetMaterial(configuratorService, logg))
			r.Post("/{configurationId}/treatments", controllers.ConfigurationSetTreatments(configuratorService, logg))
			r.Post("/{configurationId}/complete", controllers.ConfigurationComplete(configuratorService, logg))
			r.Post("/{configurationId}/reopen", controllers.ConfigurationReopen(configuratorService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Post("/", controllers.CartAddConfiguration(cartService, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartService, logg))
		})
	})

	return r
}
