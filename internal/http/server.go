// Package http serves the dashboard pages, HTMX partials and JSON API.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/auth"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/presenter"
	appweb "spendwise/web"
)

// Expenses is the expense service the handlers depend on.
type Expenses interface {
	List(ctx context.Context, userID string) ([]core.Expense, error)
	Get(ctx context.Context, userID, id string) (core.Expense, error)
	Create(ctx context.Context, userID string, data core.CreateExpenseData) (core.Expense, error)
	Update(ctx context.Context, userID string, data core.UpdateExpenseData) (core.Expense, error)
	Delete(ctx context.Context, userID, id string) error
	Dashboard(ctx context.Context, userID string, now time.Time) (presenter.Dashboard, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewServer.
type Options struct {
	Addr              string
	CookieSecure      bool
	Location          *time.Location
	RequestsPerMinute int
}

type Server struct {
	http.Server

	expenses  Expenses
	auth      *auth.Service
	ready     Pinger
	templates *template.Template
	cookies   auth.Cookies
	flows     *deleteFlows
	location  *time.Location
	now       func() time.Time
	started   time.Time
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(opts Options, expenses Expenses, authSvc *auth.Service, ready Pinger, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	t, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		expenses:  expenses,
		auth:      authSvc,
		ready:     ready,
		templates: t,
		cookies:   auth.Cookies{Secure: opts.CookieSecure},
		flows:     newDeleteFlows(1024, 30*time.Minute),
		location:  opts.Location,
		now:       time.Now,
		started:   time.Now(),
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector:  detector,
		tracer:    trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = authSvc.Middleware(s.cookies)(h)
	h = s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited, http.MethodPost)(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /{$}", auth.RequirePage(s.handleIndex))
	mux.HandleFunc("GET /ui/stats", auth.RequirePage(s.handleStats))
	mux.HandleFunc("GET /ui/chart", auth.RequirePage(s.handleChart))
	mux.HandleFunc("GET /ui/expenses", auth.RequirePage(s.handleExpenseList))

	mux.HandleFunc("GET /ui/expenses/new", auth.RequirePage(s.handleNewExpenseDialog))
	mux.HandleFunc("GET /ui/expenses/{id}/edit", auth.RequirePage(s.handleEditExpenseDialog))
	mux.HandleFunc("POST /expenses", auth.RequireUser(s.handleCreateExpense))
	mux.HandleFunc("POST /expenses/{id}", auth.RequireUser(s.handleUpdateExpense))

	mux.HandleFunc("GET /ui/expenses/{id}/delete", auth.RequirePage(s.handleStageDelete))
	mux.HandleFunc("POST /expenses/{id}/delete", auth.RequireUser(s.handleConfirmDelete))
	mux.HandleFunc("POST /ui/delete/dismiss", auth.RequireUser(s.handleDismissDelete))

	mux.HandleFunc("GET /api/expenses", s.handleAPIExpenses)
	mux.HandleFunc("GET /api/stats", s.handleAPIStats)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// DeleteFlows exposes the staged-delete cache so it can be swept.
func (s *Server) DeleteFlows() cache.Cleaner {
	return s.flows.cache
}

// clock returns the current moment in the configured location.
func (s *Server) clock() time.Time {
	return s.now().In(s.location)
}

func (s *Server) today() core.Date {
	return core.DateOf(s.clock())
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", "60").
		TriggerErrorNotification("Too many requests. Please try again later.").
		BodyString("Rate limit exceeded. Please try again later.").
		Write(w)
}
