package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ledger/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	if client.isCircuitOpen() {
		t.Fatal("circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit breaker should be open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should transition to half-open after timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatal("state should be half-open")
	}

	// A single failure while half-open reopens the circuit.
	client.recordFailure()
	if atomic.LoadInt32(&client.state) != StateOpen {
		t.Fatal("failure in half-open state should reopen the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestPublishRecordEvent_ShortCircuits(t *testing.T) {
	client := &Client{exchangeName: "x", queueName: "q", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	ev := RecordDeleted(KindExpense, 1)

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	err := client.PublishRecordEvent(context.Background(), ev)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	atomic.StoreInt32(&client.state, StateClosed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.PublishRecordEvent(ctx, ev); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRecordEventJSON(t *testing.T) {
	ev := ExpenseCreated(7, core.NewExpense{
		Amount:   core.MustAmount("12.5"),
		Category: "Food",
		Date:     core.NewDate(2024, 3, 9),
	})

	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(body), `"amount":12.5`) {
		t.Errorf("amount should be a bare number: %s", body)
	}

	parsed, err := RecordEventFromJSON(body)
	if err != nil {
		t.Fatalf("RecordEventFromJSON() error = %v", err)
	}
	if parsed.EventID != ev.EventID || parsed.RecordID != 7 || parsed.Label != "Food" {
		t.Errorf("parsed = %+v", parsed)
	}
	if p, ok := parsed.Period(); !ok || p != (core.Period{Year: 2024, Month: 3}) {
		t.Errorf("Period() = %v, %v", p, ok)
	}

	deleted, _ := RecordDeleted(KindIncome, 3).ToJSON()
	if strings.Contains(string(deleted), "amount") || strings.Contains(string(deleted), "date") {
		t.Errorf("deleted events carry no amount or date: %s", deleted)
	}
}

func TestRecordEventFromJSON_Invalid(t *testing.T) {
	for _, body := range []string{
		`{"record_id": "x"}`,
		`{"type":"updated","kind":"expense","record_id":1}`,
		`{"type":"created","kind":"transfer","record_id":1}`,
		`{"type":"created","kind":"expense","record_id":0}`,
	} {
		if _, err := RecordEventFromJSON([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

type fakeAck struct {
	acked, nacked, requeued int
}

func (f *fakeAck) Ack(bool) error { f.acked++; return nil }

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked++
	if requeue {
		f.requeued++
	}
	return nil
}

func TestDispatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	good, _ := RecordDeleted(KindExpense, 4).ToJSON()

	var got *RecordEvent
	ack := &fakeAck{}
	dispatch(context.Background(), logger, good, ack, func(_ context.Context, ev *RecordEvent) error {
		got = ev
		return nil
	})
	if ack.acked != 1 || got == nil || got.RecordID != 4 {
		t.Errorf("good message: ack=%+v got=%+v", ack, got)
	}

	ack = &fakeAck{}
	dispatch(context.Background(), logger, []byte("nope"), ack, func(context.Context, *RecordEvent) error {
		t.Error("handler must not run for malformed messages")
		return nil
	})
	if ack.nacked != 1 || ack.requeued != 0 {
		t.Errorf("malformed message should be dropped: %+v", ack)
	}

	ack = &fakeAck{}
	dispatch(context.Background(), logger, good, ack, func(context.Context, *RecordEvent) error {
		return errors.New("busy")
	})
	if ack.requeued != 1 {
		t.Errorf("failed handler should requeue: %+v", ack)
	}
}
