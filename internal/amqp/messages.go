package amqp

import (
	"encoding/json"
	"time"
)

// Mutation actions carried by expense events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEventMessage announces one confirmed mutation of the expense
// ledger. Consumers re-read the backend for current state; the message only
// identifies what changed.
type ExpenseEventMessage struct {
	Action    string    `json:"action"`
	ExpenseID string    `json:"expense_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEventMessage creates an event for the given action and id.
func NewExpenseEventMessage(action, expenseID string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		Action:    action,
		ExpenseID: expenseID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventMessageFromJSON creates a message from JSON bytes
func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
