package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/view"
)

// indexData feeds index.html. Notifications are rendered inline because a
// full page load ignores HX-Trigger.
type indexData struct {
	Page          view.Page
	Categories    []string
	Sources       []string
	Notifications []ledger.Notification
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.backend == nil:
		checks["backend"] = "not_configured"
	default:
		if err := s.backend.Ping(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	checks["sessions"] = map[string]interface{}{
		"active": s.sessions.size(),
		"status": "ok",
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.trace.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP sessions_active Browser sessions currently cached\n")
	fmt.Fprintf(w, "# TYPE sessions_active gauge\n")
	fmt.Fprintf(w, "sessions_active %d\n\n", s.sessions.size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", s.now().Sub(s.started).Seconds())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.templatesMissing(w, r)
		return
	}

	sess := s.sessions.get(w, r)
	_ = sess.controller.Refresh(r.Context())

	data := indexData{
		Page:          view.Build(sess.controller.State()),
		Notifications: sess.queue.Drain(),
	}
	if s.taxonomy != nil {
		data.Categories = s.taxonomy.Categories()
		data.Sources = s.taxonomy.Sources()
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.templateFailed(w, r, "index.html", err)
		return
	}
	NewHTMXResponse().BodyHTML(buf.Bytes()).Write(w)
}

// handleLedger re-fetches the viewed month and renders the ledger partial.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	_ = sess.controller.Refresh(r.Context())
	s.renderLedger(w, r, sess, NewHTMXResponse())
}

func (s *Server) handleSubmitExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := s.sessions.get(w, r)

	err := sess.controller.SubmitExpense(r.Context(), ledger.ExpenseForm{
		Amount:      sanitizeInput(r.PostForm.Get("amount")),
		Category:    sanitizeInput(r.PostForm.Get("category")),
		Description: sanitizeInput(r.PostForm.Get("description")),
	})
	s.renderLedger(w, r, sess, submitResponse(err, expenseFormID))
}

func (s *Server) handleSubmitIncome(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sess := s.sessions.get(w, r)

	err := sess.controller.SubmitIncome(r.Context(), ledger.IncomeForm{
		Amount:      sanitizeInput(r.PostForm.Get("amount")),
		Source:      sanitizeInput(r.PostForm.Get("source")),
		Description: sanitizeInput(r.PostForm.Get("description")),
	})
	s.renderLedger(w, r, sess, submitResponse(err, incomeFormID))
}

// Element ids of the entry forms in index.html.
const (
	expenseFormID = "expense-form"
	incomeFormID  = "income-form"
)

// submitResponse resets the submitted form only when the record was created.
func submitResponse(err error, formID string) *HTMXResponseBuilder {
	resp := NewHTMXResponse()
	if err == nil {
		resp.TriggerFormReset(formID)
	}
	return resp
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, (*ledger.Controller).DeleteExpense)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, (*ledger.Controller).DeleteIncome)
}

type deleteFunc func(c *ledger.Controller, ctx context.Context, id int64, confirm ledger.Confirmer) error

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, del deleteFunc) {
	id, err := ParseRecordID(r)
	if err != nil {
		BadRequestError("Invalid record id").Write(w)
		return
	}

	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	sess := s.sessions.get(w, r)
	err = del(sess.controller, r.Context(), id, ConfirmFrom(body.Get("confirm")))
	if errors.Is(err, ledger.ErrDeclined) {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Delete not confirmed", log.FieldRecordID, id)
	}
	s.renderLedger(w, r, sess, NewHTMXResponse())
}

func (s *Server) handleChangeMonth(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	delta, err := ParseDelta(r.PostForm.Get("delta"))
	if err != nil {
		BadRequestError("Invalid month offset").Write(w)
		return
	}

	sess := s.sessions.get(w, r)
	_ = sess.controller.ChangeMonth(r.Context(), delta)
	viewed := sess.controller.Viewed()
	s.renderLedger(w, r, sess, NewHTMXResponse().TriggerMonthChanged(viewed.Year, viewed.Month))
}

// renderLedger writes the ledger partial for the session's current state and
// forwards its pending notifications.
func (s *Server) renderLedger(w http.ResponseWriter, r *http.Request, sess *session, resp *HTMXResponseBuilder) {
	if s.templates == nil {
		s.templatesMissing(w, r)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "ledger", view.Build(sess.controller.State())); err != nil {
		s.templateFailed(w, r, "ledger", err)
		return
	}
	resp.TriggerNotifications(sess.queue.Drain()).
		BodyHTML(buf.Bytes()).
		Write(w)
}

func (s *Server) templatesMissing(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
		log.FieldPath, r.URL.Path,
		log.FieldComponent, log.ComponentTemplate,
		log.FieldErrorType, log.ErrorTypeConfiguration)
	InternalServerError("Templates not loaded").Write(w)
}

func (s *Server) templateFailed(w http.ResponseWriter, r *http.Request, name string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
		log.FieldError, err,
		"template", name,
		log.FieldComponent, log.ComponentTemplate)
	InternalServerError("Error rendering page").Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
