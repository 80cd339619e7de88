package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/creator-calc/internal/auth"
	"github.com/AngelCh415/creator-calc/internal/calculator"
	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/rates"
	"github.com/AngelCh415/creator-calc/internal/utils"
)

type Deps struct {
	Log        *slog.Logger
	Calculator *calculator.Service
	Tables     *rates.Table
	Auth       *auth.Issuer
	Metrics    metrics.Recorder
	// Gatherer backs GET /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
	// Ready is polled by /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

type api struct {
	log    *slog.Logger
	calc   *calculator.Service
	tables *rates.Table
	rec    metrics.Recorder
}

func NewRouter(d Deps) http.Handler {
	a := &api{log: d.Log, calc: d.Calculator, tables: d.Tables, rec: d.Metrics}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(utils.Recoverer(d.Log))
	mux.Use(instrument(d.Metrics))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				d.Log.Warn("not ready", slog.String("err", err.Error()))
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})

	g := d.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	mux.Route("/calculator", func(r chi.Router) {
		r.Get("/", a.staticTables)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(d.Auth, d.Log, false))
			r.Post("/", a.calculate)
			r.Post("/enterprise", a.calculateEnterprise)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate(d.Auth, d.Log, true))
			r.Get("/history", a.listHistory)
			r.Delete("/history", a.clearHistory)
			r.Get("/saved", a.listSaved)
			r.Post("/saved", a.createSaved)
			r.Get("/saved/{id}", a.getSaved)
			r.Patch("/saved/{id}", a.renameSaved)
			r.Delete("/saved/{id}", a.deleteSaved)
		})
	})

	mux.With(authenticate(d.Auth, d.Log, true)).Get("/dashboard", a.dashboard)

	mux.Route("/api/metrics", func(r chi.Router) {
		r.Post("/", a.recordMetric)
		r.With(authenticate(d.Auth, d.Log, true), requireAdmin(d.Log)).Get("/", a.metricsSnapshot)
	})

	return mux
}
