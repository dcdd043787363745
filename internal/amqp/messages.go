package amqp

import (
	"encoding/json"
	"time"

	"expensetracker/internal/core"
)

// EventType names what happened to the expense table.
type EventType string

const (
	EventExpenseAdded   EventType = "expense.added"
	EventExpenseDeleted EventType = "expense.deleted"
)

// ExpenseEvent is published after every successful add or delete. Added
// events carry the stored row; deleted events carry the match triple and
// the number of rows removed.
type ExpenseEvent struct {
	Type         EventType   `json:"type"`
	ID           int64       `json:"id,omitempty"`
	Date         core.Date   `json:"date"`
	Amount       core.Amount `json:"amount"`
	Category     string      `json:"category,omitempty"`
	Subcategory  string      `json:"subcategory,omitempty"`
	Note         string      `json:"note"`
	DeletedCount int64       `json:"deleted_count,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// NewExpenseAddedEvent builds the event for a freshly inserted expense.
func NewExpenseAddedEvent(e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Type:        EventExpenseAdded,
		ID:          e.ID,
		Date:        e.Date,
		Amount:      e.Amount,
		Category:    e.Category,
		Subcategory: e.Subcategory,
		Note:        e.Note,
		Timestamp:   time.Now().UTC(),
	}
}

// NewExpenseDeletedEvent builds the event for a delete-by-match.
func NewExpenseDeletedEvent(date core.Date, amount core.Amount, note string, deleted int64) *ExpenseEvent {
	return &ExpenseEvent{
		Type:         EventExpenseDeleted,
		Date:         date,
		Amount:       amount,
		Note:         note,
		DeletedCount: deleted,
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes an event published by this package.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
