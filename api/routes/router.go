package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/northquay/stocktrail-backend/api/controllers"
	"github.com/northquay/stocktrail-backend/api/middleware"
	"github.com/northquay/stocktrail-backend/internal/audit"
	"github.com/northquay/stocktrail-backend/internal/backup"
	"github.com/northquay/stocktrail-backend/internal/bookings"
	"github.com/northquay/stocktrail-backend/internal/catalog"
	"github.com/northquay/stocktrail-backend/internal/ledger"
	"github.com/northquay/stocktrail-backend/internal/locations"
	"github.com/northquay/stocktrail-backend/internal/movements"
	"github.com/northquay/stocktrail-backend/internal/reasons"
	"github.com/northquay/stocktrail-backend/internal/reports"
	"github.com/northquay/stocktrail-backend/pkg/config"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	"github.com/northquay/stocktrail-backend/pkg/logger"
	pkgredis "github.com/northquay/stocktrail-backend/pkg/redis"
)

// Deps carries everything the route tree wires together.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      controllers.Pinger
	Redis   controllers.Pinger
	Idem    pkgredis.IdempotencyStore
	Gather  prometheus.Gatherer
	Items   catalog.Service
	Places  locations.Service
	Stock   ledger.Service
	Moves   movements.Service
	Trail   audit.Service
	Reports reports.Service
	Reasons reasons.Service
	Booked  bookings.Service
	Backup  backup.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		chimiddleware.Timeout(cfg.HTTP.RequestTimeout),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.Gather != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gather, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(d.Idem, logg))

		// Reads: any authenticated role.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleViewer, logg))
			r.Get("/items", controllers.ListItems(d.Items, logg))
			r.Get("/items/{sku}", controllers.GetItem(d.Items, logg))
			r.Get("/templates/items.csv", controllers.ItemsCSVTemplate())
			r.Get("/templates/items.xlsx", controllers.ItemsXLSXTemplate(logg))
			r.Get("/locations", controllers.ListLocations(d.Places, logg))
			r.Get("/locations/{id}", controllers.GetLocation(d.Places, logg))
			r.Get("/stock", controllers.GetStock(d.Stock, logg))
			r.Get("/audit", controllers.QueryAudit(d.Trail, logg))
			r.Get("/reports/locations/{id}", controllers.LocationReport(d.Reports, logg))
			r.Get("/reports/products/{sku}", controllers.ProductReport(d.Reports, logg))
			r.Get("/reasons", controllers.ListReasons(d.Reasons, logg))
			r.Get("/bookings/{sku}", controllers.GetBooking(d.Booked, logg))
		})

		// Mutations: editor and above.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleEditor, logg))
			r.Post("/items", controllers.CreateItem(d.Items, logg))
			r.Patch("/items/{sku}", controllers.UpdateItem(d.Items, logg))
			r.Delete("/items/{sku}", controllers.DeleteItem(d.Items, logg))
			r.Post("/items/import", controllers.ImportItemsCSV(d.Items, cfg.Import.MaxUploadMB, logg))
			r.Post("/locations", controllers.CreateLocation(d.Places, logg))
			r.Patch("/locations/{id}", controllers.RenameLocation(d.Places, logg))
			r.Delete("/locations/{id}", controllers.DeleteLocation(d.Places, logg))
			r.Post("/stock/add", controllers.AddStock(d.Moves, logg))
			r.Post("/stock/deduct", controllers.DeductStock(d.Moves, logg))
			r.Post("/stock/set", controllers.SetStock(d.Moves, logg))
			r.Post("/stock/transfer", controllers.TransferStock(d.Moves, logg))
			r.Post("/reasons", controllers.CreateReason(d.Reasons, logg))
			r.Delete("/reasons/{code}", controllers.DeleteReason(d.Reasons, logg))
			r.Put("/bookings/{sku}", controllers.SetBooking(d.Booked, logg))
		})

		// Full-state snapshot: admin only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))
			r.Get("/export", controllers.ExportSnapshot(d.Backup, logg))
			r.Post("/restore", controllers.RestoreSnapshot(d.Backup, cfg.Import.SnapshotMaxMB, logg))
		})
	})

	return r
}
