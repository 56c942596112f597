package amqp

import (
	"encoding/json"
	"time"
)

// IngestCompletedMessage announces that a source load has been persisted.
// The worker reloads the transactions from storage, so the message only
// carries provenance.
type IngestCompletedMessage struct {
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

func NewIngestCompletedMessage(source string, rows int) *IngestCompletedMessage {
	return &IngestCompletedMessage{
		Source:    source,
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

func (m *IngestCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func IngestCompletedMessageFromJSON(data []byte) (*IngestCompletedMessage, error) {
	var msg IngestCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
