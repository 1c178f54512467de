// Package http serves the budgeting calendar JSON API.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"budgetcal/internal/auth"
	"budgetcal/internal/log"
	"budgetcal/internal/middleware/ratelimit"
	"budgetcal/internal/middleware/security"
	"budgetcal/internal/middleware/trace"
	"budgetcal/internal/services"
)

type Options struct {
	Addr               string
	CORSOrigins        []string
	RateLimitPerMinute int
	Auth               auth.Authenticator
	Logger             *log.Logger
	// Ready reports whether the backing store is reachable. Nil means always ready.
	Ready func(context.Context) error
}

type Server struct {
	http.Server

	projections *services.ProjectionService
	events      *services.EventService
	goals       *services.GoalService

	logger   *log.Logger
	ready    func(context.Context) error
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and the middleware chain, returning a server
// ready for ListenAndServe.
func NewServer(opts Options, projections *services.ProjectionService, events *services.EventService, goals *services.GoalService) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.FromDefault(log.ComponentHTTP)
	}
	authn := opts.Auth
	if authn == nil {
		authn = auth.DevAuth{}
	}

	s := &Server{
		projections: projections,
		events:      events,
		goals:       goals,
		logger:      logger,
		ready:       opts.Ready,
		limiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(authn))
	api.Use(s.limiter.Middleware(s.rateKey, s.onRateLimited))

	api.HandleFunc("/events", s.handleListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleCreateEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", s.handleGetEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", s.handleUpdateEvent).Methods(http.MethodPut)
	api.HandleFunc("/events/{id}", s.handleDeleteEvent).Methods(http.MethodDelete)

	api.HandleFunc("/occurrences", s.handleOccurrences).Methods(http.MethodGet)
	api.HandleFunc("/projection", s.handleProjection).Methods(http.MethodGet)
	api.HandleFunc("/balances", s.handleBalances).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/risk", s.handleRisk).Methods(http.MethodGet)

	api.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/progress", s.handleGoalProgress).Methods(http.MethodGet)
	api.HandleFunc("/goals/{id}", s.handleUpdateGoal).Methods(http.MethodPut)
	api.HandleFunc("/goals/{id}", s.handleDeleteGoal).Methods(http.MethodDelete)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handlePutSettings).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	var h http.Handler = r
	h = s.detector.Middleware(s.onHostile)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.tracer.Handler(h)
	h = log.Middleware(logger)(h)
	h = corsHandler(opts.CORSOrigins).Handler(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func corsHandler(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			auth.DevUserHeader,
			trace.HeaderRequestID,
		},
		ExposedHeaders:   []string{trace.HeaderRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// rateKey buckets authenticated callers by uid and the rest by address.
func (s *Server) rateKey(r *http.Request) string {
	if uid := auth.UserID(r.Context()); uid != "" {
		return "uid:" + uid
	}
	return "ip:" + s.detector.ClientIP(r)
}

func (s *Server) onRateLimited(r *http.Request, key string) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		"key", key,
		log.FieldPath, r.URL.Path)
}

func (s *Server) onHostile(r *http.Request, reason string) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Hostile request blocked",
		log.FieldReason, reason,
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldPath, r.URL.Path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Stats reports request counters for the debug log on shutdown.
func (s *Server) Stats() (requests, serverErrors, rateLimited, blocked int64) {
	m := s.tracer.Metrics()
	return m.TotalRequests, m.ServerErrors, s.limiter.Rejected(), s.detector.Blocked()
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
