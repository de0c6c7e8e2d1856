package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Op is the kind of mutation an ExpenseChanged event reports.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ExpenseChanged announces a committed expense mutation. It carries only
// identifiers; consumers load the current row from the store.
type ExpenseChanged struct {
	Op        Op        `json:"op"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseChanged(op Op, id, userID string) ExpenseChanged {
	return ExpenseChanged{Op: op, ID: id, UserID: userID, Timestamp: time.Now().UTC()}
}

func (m ExpenseChanged) Validate() error {
	switch m.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown op %q", m.Op)
	}
	if m.ID == "" || m.UserID == "" {
		return errors.New("event requires id and user_id")
	}
	return nil
}

func (m ExpenseChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseChangedFromJSON decodes and validates an event body.
func ExpenseChangedFromJSON(data []byte) (ExpenseChanged, error) {
	var msg ExpenseChanged
	if err := json.Unmarshal(data, &msg); err != nil {
		return ExpenseChanged{}, err
	}
	if err := msg.Validate(); err != nil {
		return ExpenseChanged{}, err
	}
	return msg, nil
}
