// Package events emits publish lifecycle notifications so downstream
// systems (billing, analytics, webhook fanout) can react without polling
// job status. Emission is best-effort: a failed emit never fails a
// publish.
package events

import (
	"time"
)

// EventType identifies a publish lifecycle event.
type EventType string

const (
	EventPublishStarted   EventType = "publish.started"
	EventPublishCompleted EventType = "publish.completed"
	EventPublishFailed    EventType = "publish.failed"
)

// PublishEvent is the wire payload for publish lifecycle events.
type PublishEvent struct {
	Type          EventType `json:"type"`
	JobID         string    `json:"job_id"`
	WebsiteID     string    `json:"website_id"`
	UserID        string    `json:"user_id"`
	DeploymentURL string    `json:"deployment_url,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Emitter publishes lifecycle events.
type Emitter interface {
	Emit(event *PublishEvent)
	Close() error
}

// NoopEmitter discards all events. Used when eventing is disabled.
type NoopEmitter struct{}

func (NoopEmitter) Emit(*PublishEvent) {}
func (NoopEmitter) Close() error       { return nil }
