package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/services"
)

// periodFilter reads month and year. Both must be present to filter;
// ok is false when either is missing.
func periodFilter(r *http.Request) (p core.Period, ok bool, err error) {
	q := r.URL.Query()
	ms, ys := strings.TrimSpace(q.Get("month")), strings.TrimSpace(q.Get("year"))
	if ms == "" || ys == "" {
		return core.Period{}, false, nil
	}
	month, err := strconv.Atoi(ms)
	if err != nil {
		return core.Period{}, false, fmt.Errorf("month must be an integer")
	}
	year, err := strconv.Atoi(ys)
	if err != nil {
		return core.Period{}, false, fmt.Errorf("year must be an integer")
	}
	p = core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return core.Period{}, false, errors.New(validationDetail(err))
	}
	return p, true, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	p, filtered, err := periodFilter(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var out []core.Expense
	if filtered {
		out, err = s.svc.ListExpenses(r.Context(), p)
	} else {
		out, err = s.svc.ListAllExpenses(r.Context())
	}
	if err != nil {
		s.internalError(w, r, log.OpList, "expense", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	p, filtered, err := periodFilter(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var out []core.Income
	if filtered {
		out, err = s.svc.ListIncome(r.Context(), p)
	} else {
		out, err = s.svc.ListAllIncome(r.Context())
	}
	if err != nil {
		s.internalError(w, r, log.OpList, "income", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, ok, err := periodFilter(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "month and year are required")
		return
	}

	summary, err := s.svc.Summary(r.Context(), p)
	if err != nil {
		s.internalError(w, r, log.OpSummary, "", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.NewExpense
	if err := decodeBody(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, requestDetail(err))
		return
	}
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)

	id, err := s.svc.CreateExpense(r.Context(), in)
	if err != nil {
		s.createError(w, r, "expense", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Expense added successfully", ID: id})
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in core.NewIncome
	if err := decodeBody(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, requestDetail(err))
		return
	}
	in.Source = strings.TrimSpace(in.Source)
	in.Description = strings.TrimSpace(in.Description)

	id, err := s.svc.CreateIncome(r.Context(), in)
	if err != nil {
		s.createError(w, r, "income", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Income added successfully", ID: id})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "Expense", s.svc.DeleteExpense)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "Income", s.svc.DeleteIncome)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, label string, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := del(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, label+" not found")
			return
		}
		s.internalError(w, r, log.OpDelete, strings.ToLower(label), err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: label + " deleted successfully"})
}

func (s *Server) createError(w http.ResponseWriter, r *http.Request, kind string, err error) {
	if services.IsValidation(err) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rejected "+kind,
			log.FieldRecordKind, kind,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeValidation)
		writeDetail(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}
	s.internalError(w, r, log.OpCreate, kind, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op, kind string, err error) {
	fields := log.NewFields().WithOperation(op).WithError(err)
	if kind != "" {
		fields.WithRecord(kind, 0)
	}
	fields[log.FieldErrorType] = log.ErrorTypeDatabase
	log.FromContext(r.Context()).Fields(r.Context(), slog.LevelError, "Request failed", fields)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

// requestDetail describes a body decoding failure.
func requestDetail(err error) string {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return "Request body too large"
	case errors.Is(err, core.ErrInvalidDate):
		return validationDetail(err)
	default:
		return "Invalid request body"
	}
}
