package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// EventRecord is one journaled ingest event. Records are append-only;
// the journal is the source of truth for everything the cache derives.
type EventRecord struct {
	AgentID    Identity        `json:"agent_id"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}
