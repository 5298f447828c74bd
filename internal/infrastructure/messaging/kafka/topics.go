package kafka

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

// Event types published by the pipeline.
const (
	EventChunkCommitted   = "ingest.chunk_committed"
	EventIngestFinished   = "ingest.finished"
	EventRankingCompleted = "ranking.completed"
)

const schemaVersion = "1.0"

// Event is anything the producer can publish.
type Event interface {
	EventType() string
	EventKey() string
}

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope wraps event.
func NewEventEnvelope(event Event, source string) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     event.EventType(),
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       payload,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal event payload")
	}
	return nil
}

// TopicFor maps an event type to its topic, e.g. "orphamine.ingest.finished".
func TopicFor(prefix, eventType string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// DefaultTopics lists every topic the pipeline writes to.
func DefaultTopics(prefix string) []string {
	return []string{
		TopicFor(prefix, EventChunkCommitted),
		TopicFor(prefix, EventIngestFinished),
		TopicFor(prefix, EventRankingCompleted),
	}
}

//Personal.AI order the ending
