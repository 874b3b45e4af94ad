package events

import (
	"encoding/json"
	"time"
)

// Envelope is the wire format delivered to every live subscriber and relayed
// between instances over redis.
type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload into a poll event envelope. Marshal errors are
// impossible for the payload types we emit, so they surface as an empty
// payload rather than failing the mutation that produced the event.
func NewEnvelope(eventType, aggregateID string, payload interface{}) Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	return Envelope{
		EventType:     eventType,
		AggregateType: AggregateTypePoll,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		Payload:       data,
	}
}
