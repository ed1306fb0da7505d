package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity names carried in state change messages.
const (
	EntityDebtor   = "debtor"
	EntityCreditor = "creditor"
	EntityExpense  = "expense"
)

// Actions carried in state change messages.
const (
	ActionCreated         = "created"
	ActionDeleted         = "deleted"
	ActionLoanAdded       = "loan_added"
	ActionPaymentAdded    = "payment_added"
	ActionAmountUpdated   = "amount_updated"
	ActionMonthRegistered = "month_registered"
)

// StateChangedMessage announces a completed tracker mutation. The
// worker uses the month to decide which overview to re-export.
type StateChangedMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Month     string    `json:"month,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStateChangedMessage creates a message stamped with the current time.
func NewStateChangedMessage(entity, id, action, month string) *StateChangedMessage {
	return &StateChangedMessage{
		Entity:    entity,
		ID:        id,
		Action:    action,
		Month:     month,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the message.
func (m *StateChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StateChangedMessageFromJSON deserializes and checks required fields.
func StateChangedMessageFromJSON(data []byte) (*StateChangedMessage, error) {
	var m StateChangedMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal state change message: %w", err)
	}
	if m.Entity == "" || m.Action == "" {
		return nil, fmt.Errorf("state change message missing entity or action")
	}
	return &m, nil
}
