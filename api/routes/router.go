package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmm341/avocado-ledger/api/controllers"
	"github.com/dmm341/avocado-ledger/api/middleware"
	"github.com/dmm341/avocado-ledger/internal/buyers"
	"github.com/dmm341/avocado-ledger/internal/dashboard"
	"github.com/dmm341/avocado-ledger/internal/farmers"
	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/config"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/redis"
)

// Deps are the services the router exposes. Redis and Metrics are optional.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Redis     *redis.Client
	Metrics   http.Handler
	Farmers   farmers.Service
	Buyers    buyers.Service
	Ledger    ledger.Service
	Dashboard dashboard.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{"db": d.DB}
	var idem redis.IdempotencyStore
	var idemTTL time.Duration
	if d.Redis != nil {
		ready["redis"] = d.Redis
		idem = d.Redis
		idemTTL = cfg.Redis.IdempotencyTTL
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, ready))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Idempotency(idem, idemTTL, logg))

		r.Route("/farmers", func(r chi.Router) {
			r.Get("/", controllers.FarmerList(d.Farmers, logg))
			r.Post("/", controllers.FarmerCreate(d.Farmers, logg))
			r.Get("/{id}", controllers.FarmerGet(d.Farmers, logg))
			r.Put("/{id}", controllers.FarmerUpdate(d.Farmers, logg))
			r.Delete("/{id}", controllers.FarmerDelete(d.Farmers, logg))
			r.Post("/{id}/reconcile", controllers.FarmerReconcile(d.Ledger, logg))
		})

		r.Route("/buyers", func(r chi.Router) {
			r.Get("/", controllers.BuyerList(d.Buyers, logg))
			r.Post("/", controllers.BuyerCreate(d.Buyers, logg))
			r.Get("/{id}", controllers.BuyerGet(d.Buyers, logg))
			r.Put("/{id}", controllers.BuyerUpdate(d.Buyers, logg))
			r.Delete("/{id}", controllers.BuyerDelete(d.Buyers, logg))
			r.Post("/{id}/reconcile", controllers.BuyerReconcile(d.Ledger, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(d.Ledger, logg))
			r.Post("/", controllers.OrderCreate(d.Ledger, logg))
			r.Get("/{id}", controllers.OrderGet(d.Ledger, logg))
			r.Put("/{id}", controllers.OrderUpdate(d.Ledger, logg))
			r.Delete("/{id}", controllers.OrderDelete(d.Ledger, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SaleList(d.Ledger, logg))
			r.Post("/", controllers.SaleCreate(d.Ledger, logg))
			r.Get("/{id}", controllers.SaleGet(d.Ledger, logg))
			r.Put("/{id}", controllers.SaleUpdate(d.Ledger, logg))
			r.Delete("/{id}", controllers.SaleDelete(d.Ledger, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", controllers.DashboardSummary(d.Dashboard, logg))
			r.Get("/analytics", controllers.DashboardAnalytics(d.Dashboard, logg))
		})
	})

	return r
}
