// Package notify defines the structured events the delegation engine emits
// and the boundary to the external notification delivery system. The engine
// only decides that an event fires and what payload it carries, channel
// fan-out (mail, in-app, real-time) and templating are the emitter's problem.
package notify

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType is the kind of notification event.
type EventType string

const (
	// EventTypeDelegatedToYou fires towards the delegate when a delegation is
	// created for them.
	EventTypeDelegatedToYou EventType = "delegated_to_you"
	// EventTypeDelegationAccepted fires towards the delegator when a delegate
	// accepts.
	EventTypeDelegationAccepted EventType = "delegation_accepted"
	// EventTypeDelegationCompleted fires towards the delegator when a
	// delegation completes.
	EventTypeDelegationCompleted EventType = "delegation_completed"
	// EventTypeAllCompleted fires once towards the assignment owner when the
	// last active delegation completes.
	EventTypeAllCompleted EventType = "all_completed"
	// EventTypeTaskCompleted fires towards the assignment owner when the
	// parent task itself is closed. Emitted by the assignment subsystem, part
	// of the shared emitter vocabulary.
	EventTypeTaskCompleted EventType = "task_completed"
	// EventTypeStatusChanged fires towards the delegator on any other status
	// change.
	EventTypeStatusChanged EventType = "status_changed"
)

// Event is a structured notification event.
type Event struct {
	ID        string
	Type      EventType
	EntityID  string
	TaskID    string
	Actor     string
	Recipient string
	Timestamp time.Time
	Payload   map[string]interface{}
}

// NewEvent creates an event with a fresh ID and timestamp.
func NewEvent(t EventType, entityID, taskID, actor, recipient string, payload map[string]interface{}) Event {
	return Event{
		ID:        ulid.Make().String(),
		Type:      t,
		EntityID:  entityID,
		TaskID:    taskID,
		Actor:     actor,
		Recipient: recipient,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Notifier receives the events the engine emits. Implementations must be safe
// to call after the storage transaction committed, delivery failures are
// theirs to handle.
type Notifier interface {
	Notify(ctx context.Context, events ...Event) error
}

// Noop notifier discards all events.
const Noop = noop(0)

type noop int

var _ Notifier = Noop

func (noop) Notify(ctx context.Context, events ...Event) error { return nil }
