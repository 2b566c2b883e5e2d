package domain

import "context"

// EventState is the publication state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// Event is the read-only view of an event that admission decisions need.
// The confirmed seat count is never carried here; it is counted from the
// request store inside the per-event unit of work.
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	InitiatorID       int64      `json:"initiatorId"`
	ParticipantLimit  int        `json:"participantLimit"`
	RequestModeration bool       `json:"requestModeration"`
	State             EventState `json:"state"`
}

// Bounded reports whether the event has a finite number of seats.
func (e Event) Bounded() bool {
	return e.ParticipantLimit > 0
}

// AutoAdmits reports whether requests skip moderation. Moderation only
// matters when there is a limit to enforce.
func (e Event) AutoAdmits() bool {
	return !e.RequestModeration || e.ParticipantLimit == 0
}

// EventDirectory looks up event metadata owned by the event service.
type EventDirectory interface {
	// GetEvent returns ErrEventNotFound when the event does not exist.
	GetEvent(ctx context.Context, eventID int64) (*Event, error)
}
