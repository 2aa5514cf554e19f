package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"ledger/internal/ledger"
)

func TestHTMXResponseBuilder_LedgerPartial(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		BodyHTML([]byte(`<section id="ledger"></section>`)).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Body.String(); got != `<section id="ledger"></section>` {
		t.Errorf("body = %q", got)
	}
	if h := w.Header().Get("HX-Trigger"); h != "" {
		t.Errorf("HX-Trigger = %q, want none without events", h)
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerFormReset("expense-form").
		TriggerMonthChanged(2024, 1).
		TriggerSuccessNotification("Test message").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	expectedParts := []string{
		`"form:reset":{"form":"expense-form"}`,
		`"month:changed"`,
		`"show-notification"`,
		`"year":2024`,
		`"month":1`,
		`"type":"success"`,
		`"duration":3000`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_NotificationsKeepOrder(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerNotifications([]ledger.Notification{
			{Kind: ledger.NotificationError, Message: "Cannot navigate to future months"},
			{Kind: ledger.NotificationSuccess, Message: "Expense added successfully!"},
		}).
		Write(w)

	var triggers struct {
		Show struct {
			Notifications []notificationPayload `json:"notifications"`
		} `json:"show-notification"`
	}
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	got := triggers.Show.Notifications
	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2", len(got))
	}
	if got[0].Type != "error" || got[0].Duration != errorDuration {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Type != "success" || got[1].Message != "Expense added successfully!" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestHTMXResponseBuilder_NoNotifications(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().TriggerNotifications(nil).Write(w)

	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger = %q, want empty", w.Header().Get("HX-Trigger"))
	}
}

func TestHTMXResponseBuilder_MonthChangedPayload(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().TriggerMonthChanged(2023, 12).Write(w)

	var triggers map[string]map[string]int
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if got := triggers["month:changed"]; got["year"] != 2023 || got["month"] != 12 {
		t.Errorf("month:changed = %v", got)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Invalid input"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error">Invalid input</div>`,
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("Something broke"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error">Something broke</div>`,
		},
		{
			name:       "too many requests",
			builder:    TooManyRequestsError("Slow down"),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `<div class="error">Slow down</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
				t.Errorf("missing error notification: %s", w.Header().Get("HX-Trigger"))
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}

func TestTriggerNotifications_Durations(t *testing.T) {
	tests := []struct {
		kind     ledger.NotificationKind
		wantType string
		wantMs   int
	}{
		{ledger.NotificationSuccess, "success", successDuration},
		{ledger.NotificationError, "error", errorDuration},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHTMXResponse().
				TriggerNotifications([]ledger.Notification{{Kind: tt.kind, Message: "Deleted"}}).
				Write(w)

			trigger := w.Header().Get("HX-Trigger")
			if !strings.Contains(trigger, `"type":"`+tt.wantType+`"`) {
				t.Errorf("type %q not in %s", tt.wantType, trigger)
			}
			if !strings.Contains(trigger, `"duration":`+strconv.Itoa(tt.wantMs)) {
				t.Errorf("duration %d not in %s", tt.wantMs, trigger)
			}
		})
	}
}
