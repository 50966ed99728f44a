// Package httpapi is the thin chi-based HTTP façade over the analytical
// core.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joelpate/equipcost/internal/store"
)

// NewRouter builds the full chi router: equipment, forecasting, TCO,
// replacement, and fleet routes, plus health and metrics endpoints.
func NewRouter(db store.Store, cfg Config) http.Handler {
	h := newHandlers(db, cfg)
	limiter := newIPRateLimiter(20, 40)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(h.metrics.middleware(func(r *http.Request) string {
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			return rc.RoutePattern()
		}
		return r.URL.Path
	}))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", h.metrics.handler().ServeHTTP)

	r.Route("/equipment", func(r chi.Router) {
		r.Get("/", h.listEquipment)
		r.Route("/{tag}", func(r chi.Router) {
			r.Get("/", h.getEquipment)
			r.Get("/work-orders", h.listWorkOrders)
			r.Get("/cost-history", h.costHistory)
		})
	})

	r.Route("/forecasts", func(r chi.Router) {
		r.With(limiter.middleware).Post("/generate", h.generateForecast)
		r.Get("/{tag}", h.getForecast)
		r.Get("/fleet-summary", h.fleetForecastSummary)
	})

	r.Route("/tco", func(r chi.Router) {
		r.Get("/compare", h.compareTCO)
		r.Get("/{tag}", h.getTCO)
	})

	r.With(limiter.middleware).Post("/repair-vs-replace/{tag}", h.repairVsReplace)
	r.Get("/depreciation/{tag}", h.getDepreciation)

	r.Route("/fleet", func(r chi.Router) {
		r.Get("/replacement-priorities", h.replacementPriorities)
		r.Get("/replacement-schedule", h.replacementSchedule)
		r.Get("/age-analysis", h.ageAnalysis)
		r.Get("/health", h.fleetHealth)
	})

	return r
}

func healthHandler(db store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := ctxTimeout(r)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		if tx, err := db.BeginTx(ctx); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else {
			tx.Rollback()
		}

		writeJSON(w, code, map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().UTC(),
		})
	}
}

func ctxTimeout(r *http.Request) (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(r.Context(), 3*time.Second)
}
