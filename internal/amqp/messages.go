package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"fteboard/internal/core"

	"github.com/google/uuid"
)

// ImportRequestMessage asks a worker to run an already created import run.
// The worker loads nothing else; the run row carries the status.
type ImportRequestMessage struct {
	ImportID  uuid.UUID `json:"importId"`
	Source    string    `json:"source"`
	DateFrom  core.Date `json:"dateFrom"`
	DateTo    core.Date `json:"dateTo"`
	Timestamp time.Time `json:"timestamp"`
}

// NewImportRequestMessage creates a request for the given run.
func NewImportRequestMessage(run core.ImportRun) *ImportRequestMessage {
	return &ImportRequestMessage{
		ImportID:  run.ID,
		Source:    run.Source,
		DateFrom:  run.DateFrom,
		DateTo:    run.DateTo,
		Timestamp: time.Now(),
	}
}

// Validate checks the fields a worker needs.
func (m *ImportRequestMessage) Validate() error {
	if m.ImportID == uuid.Nil {
		return errors.New("missing import id")
	}
	return core.ValidateRange(m.DateFrom, m.DateTo)
}

// ToJSON converts the message to JSON bytes
func (m *ImportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportRequestMessageFromJSON decodes and validates a message body.
func ImportRequestMessageFromJSON(data []byte) (*ImportRequestMessage, error) {
	var msg ImportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
