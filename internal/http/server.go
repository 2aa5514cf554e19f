package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"ledger/internal/cache"
	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/ports"
	appweb "ledger/web"
)

// Pinger reports whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies wires the server to the data source and its settings.
type Dependencies struct {
	Ledger   ports.Ledger
	Taxonomy ports.TaxonomyReader
	// Backend is checked by /readyz when set.
	Backend Pinger
	Logger  *log.Logger

	SessionTTL         time.Duration
	MaxSessions        int
	MutationsPerMinute int

	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    ports.Ledger
	taxonomy  ports.TaxonomyReader
	backend   Pinger
	logger    *log.Logger
	now       func() time.Time
	started   time.Time

	sessions     *sessionStore
	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	trace        *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = 12 * time.Hour
	}
	if deps.MaxSessions <= 0 {
		deps.MaxSessions = 500
	}

	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		ledger:   deps.Ledger,
		taxonomy: deps.Taxonomy,
		backend:  deps.Backend,
		logger:   logger,
		now:      deps.Clock,
		started:  deps.Clock(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.MutationsPerMinute,
		}),
		trace: trace.NewMiddleware(deps.Logger, security.ClientIP),
	}
	s.sessions = newSessionStore(s, deps.MaxSessions, deps.SessionTTL)

	s.cacheManager = cache.NewManager(deps.Logger.WithComponent(log.ComponentCache).Logger)
	s.cacheManager.Register("sessions", s.sessions.cache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates",
			log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate,
			log.FieldErrorType, log.ErrorTypeConfiguration)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/ledger", s.handleLedger)
	mux.HandleFunc("POST /expenses", s.handleSubmitExpense)
	mux.HandleFunc("POST /income", s.handleSubmitIncome)
	mux.HandleFunc("POST /expenses/{id}/delete", s.handleDeleteExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /income/{id}/delete", s.handleDeleteIncome)
	mux.HandleFunc("DELETE /income/{id}", s.handleDeleteIncome)
	mux.HandleFunc("POST /month", s.handleChangeMonth)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(security.ClientIP, s.onRateLimited, http.MethodPost, http.MethodDelete)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, security.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldComponent, log.ComponentRateLimit)
	TooManyRequestsError("Too many requests. Please slow down.").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
