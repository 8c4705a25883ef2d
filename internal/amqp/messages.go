package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseSyncMessage asks the export worker to mirror one expense row to
// the spreadsheet. It carries only the id and version; the worker reads
// the full record from the database.
type ExpenseSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ExpenseDeleteMessage asks the export worker to remove the spreadsheet
// row for a deleted expense. The row is located by id.
type ExpenseDeleteMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncMessage(id, version int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{ID: id, Version: version, Timestamp: time.Now()}
}

func NewExpenseDeleteMessage(id int64) *ExpenseDeleteMessage {
	return &ExpenseDeleteMessage{ID: id, Timestamp: time.Now()}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *ExpenseDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseDeleteMessageFromJSON(data []byte) (*ExpenseDeleteMessage, error) {
	var msg ExpenseDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
