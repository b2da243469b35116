package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CollectionImportedMessage announces that a collection import has been
// stored. It carries only identifiers: the worker reads the items from the
// database.
type CollectionImportedMessage struct {
	ID        string    `json:"id"`
	ImportID  int64     `json:"import_id"`
	RunID     string    `json:"run_id"`
	ItemCount int       `json:"item_count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCollectionImportedMessage creates a message with a fresh id
func NewCollectionImportedMessage(importID int64, runID string, itemCount int) *CollectionImportedMessage {
	return &CollectionImportedMessage{
		ID:        uuid.NewString(),
		ImportID:  importID,
		RunID:     runID,
		ItemCount: itemCount,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CollectionImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CollectionImportedMessageFromJSON creates a message from JSON bytes
func CollectionImportedMessageFromJSON(data []byte) (*CollectionImportedMessage, error) {
	var msg CollectionImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
