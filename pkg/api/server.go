// Package api assembles the HTTP surface: the middleware chain, the
// versioned API router every resource module registers onto, and the
// separate health/metrics listener.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gadaihub/backoffice/pkg/auctions"
	"github.com/gadaihub/backoffice/pkg/audit"
	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/capital"
	"github.com/gadaihub/backoffice/pkg/catalog"
	"github.com/gadaihub/backoffice/pkg/companies"
	"github.com/gadaihub/backoffice/pkg/customers"
	"github.com/gadaihub/backoffice/pkg/deposits"
	"github.com/gadaihub/backoffice/pkg/middleware"
	"github.com/gadaihub/backoffice/pkg/observability"
	"github.com/gadaihub/backoffice/pkg/roles"
	"github.com/gadaihub/backoffice/pkg/uploads"
	"github.com/gadaihub/backoffice/pkg/users"
)

// RouteRegistrar is implemented by every resource module's handler.
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// Server is the assembled HTTP API.
type Server struct {
	router  *mux.Router
	auth    *auth.Service
	metrics *observability.Metrics
	logger  *observability.Logger
}

// Options carries the dependencies the server wires together. Redis,
// Signer, OIDC and Metrics are optional; nil disables the features that
// need them (rate limiting, uploads, SSO, instrumentation).
type Options struct {
	DB      *sql.DB
	Redis   *redis.Client
	Signer  uploads.Signer
	OIDC    *auth.OIDCProvider
	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// NewServer builds the router with the full middleware chain and every
// resource module mounted under /api/v1.
func NewServer(opts Options) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		auth:    auth.NewService(opts.DB),
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}

	// Order matters: request id first so logging and everything after it
	// can correlate, auth last so guards see the identity.
	s.router.Use(middleware.RequestID)
	if opts.Logger != nil {
		s.router.Use(middleware.Logging(opts.Logger))
	}
	if opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(opts.Metrics))
	}
	if opts.Redis != nil {
		s.router.Use(middleware.NewRateLimitMiddleware(opts.Redis, opts.Metrics).Handler)
	}
	s.router.Use(middleware.NewAuthMiddleware(s.auth).Handler)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	registrars := []RouteRegistrar{
		roles.NewHandler(opts.DB),
		users.NewHandler(opts.DB),
		companies.NewHandler(opts.DB),
		catalog.NewHandler(opts.DB),
		customers.NewHandler(opts.DB),
		capital.NewHandler(opts.DB),
		deposits.NewHandler(opts.DB),
		auctions.NewHandler(opts.DB),
		audit.NewHandler(opts.DB),
	}
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}

	NewAuthHandlers(s.auth, opts.OIDC, opts.Metrics).RegisterRoutes(api)

	if opts.Signer != nil {
		uploads.NewHandler(opts.Signer, opts.Metrics).RegisterRoutes(api)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router for extra registrations.
func (s *Server) Router() *mux.Router {
	return s.router
}

// NewHealthRouter builds the router served on the separate health port:
// liveness, readiness, and the Prometheus scrape endpoint.
func NewHealthRouter(checker *observability.HealthChecker, registry *prometheus.Registry) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", checker.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", checker.Readiness).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler(registry)).Methods(http.MethodGet)
	return router
}
