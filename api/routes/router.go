package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/costlessmarkets/pricebook-backend/api/controllers"
	"github.com/costlessmarkets/pricebook-backend/api/middleware"
	"github.com/costlessmarkets/pricebook-backend/internal/changes"
	"github.com/costlessmarkets/pricebook-backend/internal/export"
	"github.com/costlessmarkets/pricebook-backend/internal/history"
	"github.com/costlessmarkets/pricebook-backend/internal/items"
	"github.com/costlessmarkets/pricebook-backend/internal/vendors"
	"github.com/costlessmarkets/pricebook-backend/pkg/config"
	"github.com/costlessmarkets/pricebook-backend/pkg/db"
	"github.com/costlessmarkets/pricebook-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	vendorsService vendors.Service,
	itemsService items.Service,
	changesService changes.Service,
	exportService export.Service,
	changesRepo *changes.Repository,
	historyRepo *history.Repository,
	metricsRegistry *prometheus.Registry,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActingUser(logg))

		r.Route("/vendors", func(r chi.Router) {
			r.Post("/", controllers.VendorCreate(vendorsService, logg))
			r.Get("/", controllers.VendorList(vendorsService, logg))

			r.Route("/{vendorCode}", func(r chi.Router) {
				r.Get("/", controllers.VendorDetail(vendorsService, logg))
				r.Put("/", controllers.VendorUpdate(vendorsService, logg))
				r.Delete("/", controllers.VendorDelete(vendorsService, logg))

				r.Get("/pricebook", controllers.VendorPriceBook(itemsService, logg))

				r.Route("/link-groups", func(r chi.Router) {
					r.Post("/", controllers.LinkGroupCreate(vendorsService, logg))
					r.Get("/", controllers.LinkGroupList(vendorsService, logg))
					r.Delete("/{linkGroupID}", controllers.LinkGroupDelete(vendorsService, logg))
				})
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(itemsService, logg))

			r.Route("/{vendorCode}/{upc}", func(r chi.Router) {
				r.Get("/", controllers.ItemDetail(itemsService, logg))
				r.Put("/", controllers.ItemUpdate(itemsService, logg))
				r.Post("/retail", controllers.ItemChangeRetail(itemsService, logg))
				r.Post("/movement", controllers.ItemUpdateMovement(itemsService, logg))
				r.Get("/history", controllers.ItemHistory(itemsService, logg))
				r.Post("/cost-changes", controllers.ChangeSubmit(changesService, logg))
			})
		})

		r.Route("/cost-changes", func(r chi.Router) {
			r.Get("/", controllers.ChangeList(changesService, logg))
			r.Route("/{changeID}", func(r chi.Router) {
				r.Get("/", controllers.ChangeDetail(changesService, logg))
				r.Post("/approve", controllers.ChangeApprove(changesService, logg))
				r.Post("/reject", controllers.ChangeReject(changesService, logg))
				r.Post("/apply", controllers.ChangeApply(changesService, logg))
			})
		})

		r.Route("/exports", func(r chi.Router) {
			r.Post("/", controllers.ExportRun(exportService, logg))
			r.Get("/", controllers.ExportLog(exportService, logg))
		})

		r.Get("/dashboard", controllers.Dashboard(changesRepo, historyRepo, logg))
	})

	return r
}
