package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

type EventType string

const (
	EventRecordCreated EventType = "record.created"
	EventRecordUpdated EventType = "record.updated"
	EventRecordDeleted EventType = "record.deleted"
	EventMonthDeleted  EventType = "month.deleted"
	EventBudgetChanged EventType = "budget.changed"
	EventLedgerReset   EventType = "ledger.reset"
)

// LedgerEvent announces a change to the records or budgets. It carries the
// affected months only; consumers reload the documents themselves.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	Kind      string    `json:"kind,omitempty"`
	RecordID  string    `json:"record_id,omitempty"`
	Months    []string  `json:"months,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event for the given months, dropping duplicates
// and empty keys.
func NewLedgerEvent(t EventType, months ...string) *LedgerEvent {
	seen := map[string]struct{}{}
	var unique []string
	for _, m := range months {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		unique = append(unique, m)
	}
	return &LedgerEvent{
		Type:      t,
		Months:    unique,
		Timestamp: time.Now(),
	}
}

// ForRecord sets the record the event refers to.
func (m *LedgerEvent) ForRecord(kind, id string) *LedgerEvent {
	m.Kind = kind
	m.RecordID = id
	return m
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes an event and rejects ones without a type.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, errors.New("ledger event without type")
	}
	return &msg, nil
}
