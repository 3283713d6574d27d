// Package httptransport is the thin HTTP layer. Handlers decode, call a
// service and encode; business rules stay in the services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"surety/internal/geofence"
	"surety/internal/platform/metrics"
	"surety/internal/wage"
	"surety/pkg/platform/httputil"
	"surety/pkg/platform/middleware/auth"
	"surety/pkg/platform/middleware/metadata"
	"surety/pkg/platform/middleware/ratelimit"
	"surety/pkg/platform/middleware/request"
	"surety/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

type Handler struct {
	bond     BondService
	identity IdentityReader
	jobs     JobService
	ledger   LedgerService
	sites    *geofence.Sites
	wages    *wage.Calculator
	logger   *slog.Logger
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithSites(sites *geofence.Sites) Option {
	return func(h *Handler) {
		h.sites = sites
	}
}

func WithWageCalculator(c *wage.Calculator) Option {
	return func(h *Handler) {
		h.wages = c
	}
}

func NewHandler(bondSvc BondService, identity IdentityReader, jobSvc JobService, ledgerSvc LedgerService, opts ...Option) *Handler {
	h := &Handler{
		bond:     bondSvc,
		identity: identity,
		jobs:     jobSvc,
		ledger:   ledgerSvc,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sites == nil {
		h.sites, _ = geofence.NewSites()
	}
	if h.wages == nil {
		h.wages, _ = wage.NewCalculator(wage.DefaultPolicy)
	}
	return h
}

// RouterConfig carries the cross-cutting pieces of the router. Nil limiters
// and metrics are skipped.
type RouterConfig struct {
	Auth        *auth.Authenticator
	PublicLimit *ratelimit.Limiter
	OracleLimit *ratelimit.Limiter
	Metrics     *metrics.Registry
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

// NewRouter wires ops endpoints and the /api/v1 surface.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(h.logger))
	r.Use(observe(cfg.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", h.handleReady(cfg.Ready))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(chimw.Timeout(requestTimeout))
		api.Use(chimw.AllowContentType("application/json"))

		api.Group(func(pub chi.Router) {
			pub.Use(limit(cfg.PublicLimit))
			pub.Post("/identity", h.handleSubmitIdentity)
			pub.Get("/identity/{wallet}", h.handleIdentityStatus)
			pub.Post("/location/verify", h.handleVerifyLocation)
			pub.Get("/sites", h.handleListSites)
			pub.Get("/risk/score", h.handleRiskScore)
			pub.Get("/risk/{wallet}", h.handleRiskProfile)
			pub.Get("/wages/breakdown", h.handleWageBreakdown)
			pub.Get("/workers/{wallet}", h.handleGetWorker)
			pub.Get("/jobs", h.handleListJobs)
			pub.Get("/jobs/{id}", h.handleGetJob)
		})

		api.Group(func(wr chi.Router) {
			wr.Use(cfg.Auth.RequireRole(auth.RoleWorker, auth.RoleOracle))
			wr.Use(limit(cfg.PublicLimit))
			wr.Post("/workers/{wallet}/check-in", h.handleCheckIn)
			wr.Post("/jobs/{id}/start", h.handleStartJob)
		})

		api.Group(func(er chi.Router) {
			er.Use(cfg.Auth.RequireRole(auth.RoleEmployer))
			er.Use(limit(cfg.PublicLimit))
			er.Post("/employer/hire", h.handleHire)
			er.Post("/employer/terminate", h.handleTerminate)
			er.Post("/jobs", h.handleCreateJob)
			er.Post("/jobs/{id}/cancel", h.handleCancelJob)
		})

		api.Group(func(or chi.Router) {
			or.Use(cfg.Auth.RequireRole(auth.RoleOracle))
			or.Use(limit(cfg.OracleLimit))
			or.Route("/oracle", func(o chi.Router) {
				o.Post("/verify", h.handleVerify)
				o.Post("/reject", h.handleReject)
				o.Post("/stake", h.handleStake)
				o.Post("/check-in", h.handleOracleCheckIn)
				o.Post("/release-wage", h.handleReleaseWage)
				o.Post("/setup-worker", h.handleSetupWorker)
				o.Get("/intents/{wallet}", h.handleListIntents)
				o.Post("/intents/retry", h.handleRetryIntents)
			})
			or.Post("/jobs/{id}/complete", h.handleCompleteJob)
			or.Post("/risk/{wallet}/recalculate", h.handleRecalculateRisk)
			or.Post("/webhooks/ledger", h.handleLedgerWebhook)
		})
	})
	return r
}

func (h *Handler) handleReady(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func limit(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware
}

// observe records per-route metrics using the matched chi pattern so path
// parameters do not explode label cardinality.
func observe(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if reg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reg.ObserveHTTP(route, strconv.Itoa(status), time.Since(start).Seconds())
		})
	}
}
