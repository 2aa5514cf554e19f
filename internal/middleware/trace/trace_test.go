package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"ledger/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(log.New(log.Config{Output: &buf}), func(*http.Request) string { return "203.0.113.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		log.FromContext(r.Context()).Info("handler ran")
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a uuid", seen)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header = %q, want %q", rr.Header().Get(RequestIDHeader), seen)
	}
	out := buf.String()
	if !strings.Contains(out, "request_id="+seen) {
		t.Errorf("handler log missing request id: %s", out)
	}
	if !strings.Contains(out, "status_code=418") || !strings.Contains(out, "level=WARN") {
		t.Errorf("completion log missing status: %s", out)
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
}

func TestMiddlewareKeepsUpstreamID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	id := uuid.NewString()

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != id {
		t.Errorf("request id = %q, want %q", seen, id)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "not-a-uuid" {
		t.Error("invalid upstream id must be replaced")
	}
}
