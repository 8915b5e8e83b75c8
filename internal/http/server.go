package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/middleware/ratelimit"
	"presupuesto/internal/middleware/security"
	"presupuesto/internal/report"
	"presupuesto/internal/services"
	"presupuesto/internal/storage"
	appweb "presupuesto/web"
)

// Ledger is what the handlers need from the ledger service.
type Ledger interface {
	Taxonomy() core.Taxonomy
	Months() []core.MonthKey
	Report(filter core.MonthFilter) report.Report
	Incomes(filter core.MonthFilter) []core.Income
	Expenses(filter core.MonthFilter) []core.Expense
	Income(id string) (core.Income, error)
	Expense(id string) (core.Expense, error)
	AddIncome(ctx context.Context, in core.Income) (core.Income, services.Outcome, error)
	AddExpense(ctx context.Context, e core.Expense) (core.Expense, services.Outcome, error)
	UpdateIncome(ctx context.Context, id string, in core.Income) (core.Income, services.Outcome, error)
	UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, services.Outcome, error)
	DeleteRecord(ctx context.Context, kind core.Kind, id string) (services.Outcome, error)
	DeleteMonth(ctx context.Context, month core.MonthKey, scope services.DeleteScope, confirmed bool) (storage.DeleteCounts, services.Outcome, error)
	Reset(ctx context.Context, confirmation string) (services.Outcome, error)
	Budget(month core.MonthKey) (map[string]core.Money, error)
	EnsureBudgetMonth(ctx context.Context, month core.MonthKey) (map[string]core.Money, error)
	SetBudget(ctx context.Context, month core.MonthKey, category string, amount core.Money) (services.Outcome, error)
}

// Options tunes the server. Zero values pick defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
	// Ready reports whether storage is reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger    Ledger
	templates *template.Template
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	logger    *log.Logger
	ready     func(ctx context.Context) error
	startedAt time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
		limitCfg.Burst = opts.RateLimitPerMinute
	}

	s := &Server{
		ledger:    ledger,
		limiter:   ratelimit.NewLimiter(limitCfg),
		detector:  security.NewDetector(),
		logger:    logger,
		ready:     opts.Ready,
		startedAt: time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.detector.Middleware(s.logger))
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.ReadOnly, s.onRateLimit))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Recurso no encontrado").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "Método no permitido").Write(w)
	})

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/ui/report", s.handleReportPartial)

	r.Route("/api", func(r chi.Router) {
		r.Get("/taxonomy", s.handleTaxonomy)
		r.Get("/months", s.handleMonths)
		r.Get("/report", s.handleReport)

		r.Route("/incomes", func(r chi.Router) {
			r.Get("/", s.handleListIncomes)
			r.Post("/", s.handleCreateIncome)
			r.Get("/{id}", s.handleGetIncome)
			r.Put("/{id}", s.handleUpdateIncome)
			r.Delete("/{id}", s.handleDeleteIncome)
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Get("/budgets/{month}", s.handleGetBudget)
		r.Post("/budgets/{month}", s.handleEnsureBudget)
		r.Put("/budgets/{month}/{category}", s.handleSetBudget)

		r.Delete("/months/{month}", s.handleDeleteMonth)
		r.Post("/reset", s.handleReset)
	})

	return r
}

// accessLog logs every request through the request-scoped logger so the
// request id is attached.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := s.detector.ExtractClientIP(r)
		access := log.NewStructuredLogger(log.FromContext(r.Context()))
		access.LogHTTPStart(r.Context(), r, clientIP)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		access.LogHTTPEnd(r.Context(), r, status, time.Since(start).Milliseconds(), clientIP)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Demasiadas solicitudes, intente más tarde").Write(w)
}

// Shutdown gracefully shuts down the server and the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
