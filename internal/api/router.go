package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/smukkama/factory-monitor/internal/aggregation"
	"github.com/smukkama/factory-monitor/internal/auth"
	"github.com/smukkama/factory-monitor/internal/live"
	"github.com/smukkama/factory-monitor/internal/store"
)

// RouterOptions controls cross-cutting HTTP behaviour
type RouterOptions struct {
	ServiceName    string
	AllowedOrigins []string
	RateLimit      int
	RequestTimeout time.Duration
	// Ready reports whether optional backends are reachable. Nil means
	// always ready.
	Ready func(ctx context.Context) error
}

// API wires the aggregation, store, session and live layers to handlers
type API struct {
	agg       *aggregation.Aggregator
	store     *store.Store
	sessions  *auth.SessionManager
	hub       *live.Hub
	keepalive time.Duration
}

// New validates dependencies and returns the API
func New(agg *aggregation.Aggregator, st *store.Store, sessions *auth.SessionManager, hub *live.Hub) (*API, error) {
	if agg == nil {
		return nil, errors.New("aggregator is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if hub == nil {
		return nil, errors.New("live hub is required")
	}

	return &API{
		agg:       agg,
		store:     st,
		sessions:  sessions,
		hub:       hub,
		keepalive: 15 * time.Second,
	}, nil
}

// Router builds the HTTP router with health, readiness, metrics and the
// versioned API.
func (a *API) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 300
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "factory-monitor"
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ready(ctx); err != nil {
				respondError(w, http.StatusServiceUnavailable, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// streams outlive the request timeout
		r.Get("/machines/{machineID}/sensors/stream", a.handleSensorStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(opts.RequestTimeout))

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", a.handleDashboardStats)
				r.Get("/oee", a.handleOEE)
				r.Get("/uptime", a.handleUptime)
				r.Get("/scrap-rate", a.handleScrapRate)
				r.Get("/today", a.handleToday)
				r.Get("/lines", a.handleLinePerformance)
				r.Get("/machine-status", a.handleMachineStatus)
				r.Get("/alerts", a.handleAlerts)
				r.Get("/production-trend", a.handleProductionTrend)
			})

			r.Get("/lines", a.handleListLines)
			r.Get("/lines/{lineID}", a.handleGetLine)
			r.Get("/lines/{lineID}/machines", a.handleLineMachines)
			r.Get("/lines/{lineID}/vista", a.handleLineVista)

			r.Get("/machines", a.handleListMachines)
			r.Get("/machines/{machineID}", a.handleGetMachine)
			r.Get("/machines/{machineID}/production", a.handleMachineProduction)
			r.Get("/machines/{machineID}/production/trend", a.handleMachineProductionTrend)
			r.Get("/machines/{machineID}/sensors", a.handleMachineSensors)
			r.Get("/machines/{machineID}/downtime", a.handleMachineDowntime)
			r.Get("/machines/{machineID}/measurements", a.handleMachineMeasurements)
			r.Get("/machines/{machineID}/vista", a.handleMachineVista)

			r.Get("/production", a.handleListProduction)
			r.Get("/downtime", a.handleListDowntime)
			r.Get("/measurements", a.handleListMeasurements)
			r.Get("/users", a.handleListUsers)

			r.Get("/roles/{role}/permissions", a.handleRolePermissions)
			r.Get("/roles/{role}/permissions/{action}", a.handleCheckPermission)

			r.Post("/sessions", a.handleStartSession)
			r.Get("/sessions/{sessionID}", a.handleGetSession)
			r.Put("/sessions/{sessionID}/role", a.handleSwitchRole)
			r.Delete("/sessions/{sessionID}", a.handleEndSession)
		})
	})

	return otelhttp.NewHandler(r, opts.ServiceName)
}
