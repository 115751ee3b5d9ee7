package amqp

import (
	"encoding/json"
	"time"
)

// SyncFailureMessage records a background gateway call that failed after the
// local cache had already been updated. A consumer can use it to reconcile the
// remote copy later.
type SyncFailureMessage struct {
	Operation     string          `json:"operation"`
	UserID        string          `json:"userId,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Error         string          `json:"error"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewSyncFailureMessage stamps a failure with the current time.
func NewSyncFailureMessage(operation, userID, transactionID, errMsg string, payload []byte) *SyncFailureMessage {
	return &SyncFailureMessage{
		Operation:     operation,
		UserID:        userID,
		TransactionID: transactionID,
		Payload:       payload,
		Error:         errMsg,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SyncFailureMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncFailureMessageFromJSON creates a message from JSON bytes
func SyncFailureMessageFromJSON(data []byte) (*SyncFailureMessage, error) {
	var msg SyncFailureMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
