package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-group/internal/accounts"
	"github.com/odyssey-erp/odyssey-group/internal/companies"
	"github.com/odyssey-erp/odyssey-group/internal/consol"
	"github.com/odyssey-erp/odyssey-group/internal/elimination"
	"github.com/odyssey-erp/odyssey-group/internal/masterdata"
	"github.com/odyssey-erp/odyssey-group/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-group/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-group/jobs"
)

// NewRouter constructs the chi.Router with Odyssey defaults. inspector may be
// nil when no job queue is configured.
func (a *App) NewRouter(inspector jobs.QueueInspector) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      a.Logger,
		Config:      a.Config,
		Idempotency: a.Idempotency,
		Metrics:     a.Metrics,
	}) {
		r.Use(mw)
	}
	if !a.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", a.health)
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	r.Route("/jobs", jobs.NewHandler(inspector, a.Logger).MountRoutes)

	companyHandler := companies.NewHandler(a.Logger, a.Companies)
	accountHandler := accounts.NewHandler(a.Logger, a.Accounts)

	r.Route("/api", func(r chi.Router) {
		r.Route("/companies", func(r chi.Router) {
			companyHandler.MountRoutes(r)
			r.Route("/{companyID}/accounts", accountHandler.MountCompanyRoutes)
		})
		r.Route("/accounts", accountHandler.MountRoutes)
		r.Route("/eliminations", elimination.NewHandler(a.Logger, a.Eliminations).MountRoutes)
		r.Route("/consolidation", consol.NewHandler(a.Logger, a.Consol).MountRoutes)
		r.Route("/masterdata", func(r chi.Router) {
			masterdata.MountAll(r, a.Store.MasterData(), a.Store, a.Logger)
		})
	})

	return r
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Store.Stats(r.Context())
	if err != nil {
		httpx.Fail(w, a.Logger, "health check failed", err)
		return
	}
	redisStatus := cache.Check(r.Context(), a.Redis)
	status := "ok"
	if redisStatus == cache.StatusUnavailable {
		status = "degraded"
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": status, "redis": redisStatus, "store": stats})
}
