package v1

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope wraps every governance event written to the outbox and carried
// by the bus and the redis stream. Fields are append-only.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// DecodeData unmarshals the event payload into target.
func (e Envelope) DecodeData(target any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s (%s) has no payload", e.EventID, e.EventType)
	}
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	return nil
}
