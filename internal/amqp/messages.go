package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

type RecordKind string

const (
	KindExpense RecordKind = "expense"
	KindIncome  RecordKind = "income"
)

// RecordEvent announces that a ledger record was created or deleted.
// Deleted events carry only the kind and id.
type RecordEvent struct {
	EventID    string       `json:"event_id"`
	Type       EventType    `json:"type"`
	Kind       RecordKind   `json:"kind"`
	RecordID   int64        `json:"record_id"`
	Amount     *core.Amount `json:"amount,omitempty"`
	Label      string       `json:"label,omitempty"`
	Date       string       `json:"date,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

func newEvent(t EventType, kind RecordKind, id int64) *RecordEvent {
	return &RecordEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		Kind:       kind,
		RecordID:   id,
		OccurredAt: time.Now().UTC(),
	}
}

func ExpenseCreated(id int64, e core.NewExpense) *RecordEvent {
	ev := newEvent(EventCreated, KindExpense, id)
	ev.Amount = &e.Amount
	ev.Label = e.Category
	ev.Date = e.Date.String()
	return ev
}

func IncomeCreated(id int64, i core.NewIncome) *RecordEvent {
	ev := newEvent(EventCreated, KindIncome, id)
	ev.Amount = &i.Amount
	ev.Label = i.Source
	ev.Date = i.Date.String()
	return ev
}

func RecordDeleted(kind RecordKind, id int64) *RecordEvent {
	return newEvent(EventDeleted, kind, id)
}

// Period returns the month a created record belongs to.
func (e *RecordEvent) Period() (core.Period, bool) {
	if e.Date == "" {
		return core.Period{}, false
	}
	d, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Period{}, false
	}
	return d.Period(), true
}

func (e *RecordEvent) Validate() error {
	switch e.Type {
	case EventCreated, EventDeleted:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	switch e.Kind {
	case KindExpense, KindIncome:
	default:
		return fmt.Errorf("unknown record kind %q", e.Kind)
	}
	if e.RecordID <= 0 {
		return fmt.Errorf("invalid record id %d", e.RecordID)
	}
	return nil
}

func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and validates an event.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
