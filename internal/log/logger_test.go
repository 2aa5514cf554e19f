package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})

	l.Info("loaded", FieldYear, 2024)
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "year=2024") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentHTTP).Fields(context.Background(), slog.LevelWarn, "slow",
		NewFields().WithPeriod(2024, 3).WithRecord("expense", 7))
	out = buf.String()
	for _, want := range []string{"level=WARN", "component=http", "month=3", "record_kind=expense", "record_id=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf}).With(FieldRequestID, "req-1")

	ctx := NewContext(context.Background(), base)
	FromContext(ctx).Info("inside", NewFields().WithOperation("refresh").WithError(errors.New("boom")).ToSlice()...)

	for _, want := range []string{"request_id=req-1", "operation=refresh", "error=boom"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q: %s", want, buf.String())
		}
	}
}

func TestFromContextFallback(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", l)
	}
}

func TestLogFieldsForLedgerRecords(t *testing.T) {
	f := NewFields().
		WithOperation(OpCreate).
		WithRecord("expense", 0).
		WithExpense("Food", "12.5", "")

	if f[FieldOperation] != OpCreate || f[FieldRecordKind] != "expense" || f[FieldCategory] != "Food" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if _, ok := f[FieldRecordID]; ok {
		t.Error("record_id should be omitted before the record exists")
	}
	if _, ok := f[FieldDate]; ok {
		t.Error("empty date should be omitted")
	}

	nav := NewFields().WithOperation(OpNavigate).WithDelta(-2).WithPeriod(2024, 1)
	if nav[FieldDelta] != -2 || nav[FieldYear] != 2024 || nav[FieldMonth] != 1 {
		t.Fatalf("unexpected navigation fields: %v", nav)
	}
	if got := len(nav.ToSlice()); got != 8 {
		t.Errorf("ToSlice() length = %d, want 8", got)
	}
}
