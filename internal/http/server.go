package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fteboard/internal/log"
	"fteboard/internal/middleware/ratelimit"
	"fteboard/internal/middleware/security"
	"fteboard/internal/middleware/trace"
	"fteboard/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the application services behind the API.
type Services struct {
	Reports  *services.ReportService
	Planning *services.PlanningService
	Imports  *services.ImportService
	Store    Pinger
}

// Config configures the HTTP server.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	Logger             *log.Logger
}

// appMetrics tracks application-level counters.
type appMetrics struct {
	uptime           time.Time
	importsRequested int64
	importsFailed    int64
}

// Server is the API server.
type Server struct {
	http.Server
	svc    Services
	logger *log.Logger
	now    func() time.Time

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	appMetrics      *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc Services) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentHTTP)
	}

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		svc:    svc,
		logger: logger,
		now:    time.Now,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Methods:           []string{http.MethodPost, http.MethodPatch},
		}),
		traceMiddleware: trace.NewMiddleware(extractClientIP, logger),
		appMetrics:      &appMetrics{uptime: time.Now()},
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, extractClientIP(r),
				log.FieldPath, r.URL.Path)
			TooManyRequestsError().Write(w)
		}))

		r.Get("/working-days", s.handleWorkingDays)
		r.Get("/working-hours", s.handleWorkingHours)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/period", s.handlePeriodReport)
			r.Get("/monthly", s.handleMonthlyReport)
			r.Get("/categories", s.handleCategories)
			r.Get("/unpaired", s.handleUnpaired)
		})
		r.Post("/validate", s.handleValidate)

		r.Get("/keywords", s.handleListKeywords)
		r.Post("/keywords", s.handleCreateKeyword)
		r.Patch("/keywords/{id}", s.handleUpdateKeyword)

		r.Get("/planned-fte", s.handleListPlannedFTE)
		r.Post("/planned-fte", s.handleCreatePlannedFTE)

		r.Get("/holidays", s.handleListHolidays)
		r.Post("/holidays", s.handleCreateHoliday)

		r.Get("/imports", s.handleListImports)
		r.Post("/imports", s.handleCreateImport)
		r.Get("/imports/{id}", s.handleGetImport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})
	return r
}

// fail writes err mapped to its status. Server errors are logged and their
// detail is not sent to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err, op,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()))
		InternalServerError("internal error").Write(w)
		return
	}
	ErrorResponse(status, err.Error()).Write(w)
}

// Shutdown gracefully shuts down the server and its rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) countImport(failed bool) {
	atomic.AddInt64(&s.appMetrics.importsRequested, 1)
	if failed {
		atomic.AddInt64(&s.appMetrics.importsFailed, 1)
	}
}
