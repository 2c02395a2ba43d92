package interfaces

import (
	"context"
	"time"
)

// EventType identifies a pipeline event published during a run.
type EventType string

const (
	EventRunStarted          EventType = "run_started"
	EventStageCompleted      EventType = "stage_completed"
	EventRunCompleted        EventType = "run_completed"
	EventAlignmentUnresolved EventType = "alignment_unresolved"
)

// Event is one published pipeline event.
type Event struct {
	Type      EventType              `json:"type"`
	RunID     string                 `json:"run_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler processes a published event.
type EventHandler func(ctx context.Context, event Event) error

// EventService is an in-process pub/sub bus for pipeline progress events.
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error
	Publish(ctx context.Context, event Event) error
}
