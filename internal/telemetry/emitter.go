// Package telemetry carries auth lifecycle events (registrations, session starts,
// refreshes and logouts) to an event sink such as OTel Logs.
package telemetry

import (
	"context"
	"time"
)

// Event types emitted by the session engine.
const (
	EventUserRegistered   = "user_registered"
	EventSessionStarted   = "session_started"
	EventSessionRefreshed = "session_refreshed"
	EventSessionEnded     = "session_ended"
)

// Event is a single auth lifecycle event. It never carries tokens, session ids or
// password material.
type Event struct {
	Type      string
	UserID    string
	Source    string
	CreatedAt time.Time
}

// EventEmitter emits events. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
