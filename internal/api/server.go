// Package api serves the ledger REST backend consumed by the web front end.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
	"ledger/internal/ports"
)

// Service is what the handlers need from the backend service layer.
type Service interface {
	ports.Ledger
	ListAllExpenses(ctx context.Context) ([]core.Expense, error)
	ListAllIncome(ctx context.Context) ([]core.Income, error)
	Ping(ctx context.Context) error
}

const maxBodyBytes = 1 << 16

type Server struct {
	http.Server
	svc    Service
	logger *log.Logger
	trace  *trace.Middleware
}

func NewServer(addr string, svc Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAPI)

	s := &Server{
		svc:    svc,
		logger: logger,
		trace:  trace.NewMiddleware(logger, security.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /expenses/{$}", s.handleListExpenses)
	mux.HandleFunc("POST /expenses/{$}", s.handleCreateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /income/{$}", s.handleListIncome)
	mux.HandleFunc("POST /income/{$}", s.handleCreateIncome)
	mux.HandleFunc("DELETE /income/{id}", s.handleDeleteIncome)
	mux.HandleFunc("GET /summary/{$}", s.handleSummary)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.svc.Ping(ctx); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "database": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "database": "ok"})
}

// validationDetail turns domain validation errors into client-facing text.
func validationDetail(err error) string {
	switch {
	case errors.Is(err, core.ErrAmountTooLarge):
		return "Amount is too large"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a non-negative number"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrEmptySource):
		return "Source is required"
	case errors.Is(err, core.ErrInvalidDate):
		return "Date must be a valid YYYY-MM-DD date"
	case errors.Is(err, core.ErrInvalidMonth):
		return "Month must be between 1 and 12"
	default:
		return err.Error()
	}
}
