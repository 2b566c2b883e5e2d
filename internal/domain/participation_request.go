package domain

import (
	"context"
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of a participation request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusConfirmed RequestStatus = "CONFIRMED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCanceled  RequestStatus = "CANCELED"
)

// ParseRequestStatus parses a status name case-insensitively.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCanceled:
		return st, nil
	}
	return "", Invalid("unknown request status %q", s)
}

// ParticipationRequest is a user's request to join an event. Values are
// never mutated in place: a transition produces a new value.
// swagger:model ParticipationRequest
type ParticipationRequest struct {
	ID          int64         `json:"id"`
	EventID     int64         `json:"event"`
	RequesterID int64         `json:"requester"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created"`
}

// NewParticipationRequest returns an unsaved request. ID is set by the repository on create.
func NewParticipationRequest(eventID, requesterID int64, status RequestStatus, createdAt time.Time) ParticipationRequest {
	return ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		CreatedAt:   createdAt,
	}
}

// WithStatus returns a copy of r in the given status.
func (r ParticipationRequest) WithStatus(status RequestStatus) ParticipationRequest {
	r.Status = status
	return r
}

// Active reports whether the request still blocks a new one for the same
// (event, requester) pair.
func (r ParticipationRequest) Active() bool {
	return r.Status != StatusCanceled
}

// DecisionResult is the outcome of an organizer batch decision.
// swagger:model DecisionResult
type DecisionResult struct {
	Confirmed []ParticipationRequest `json:"confirmedRequests"`
	Rejected  []ParticipationRequest `json:"rejectedRequests"`
}

// Changed returns every request whose status was decided, confirmed first.
func (d DecisionResult) Changed() []ParticipationRequest {
	out := make([]ParticipationRequest, 0, len(d.Confirmed)+len(d.Rejected))
	out = append(out, d.Confirmed...)
	return append(out, d.Rejected...)
}

// ParticipationRequestRepository defines storage operations for participation requests.
type ParticipationRequestRepository interface {
	// GetByID returns ErrRequestNotFound when no request has the id.
	GetByID(ctx context.Context, id int64) (ParticipationRequest, error)
	ListByRequesterID(ctx context.Context, requesterID int64) ([]ParticipationRequest, error)
	ListByEventID(ctx context.Context, eventID int64) ([]ParticipationRequest, error)
	// CountConfirmedByEventIDs returns the confirmed seat count of every
	// given event, including zero counts.
	CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int, error)
	// WithinEvent runs fn as one atomic unit serialized against every other
	// unit for the same event. If fn returns an error nothing it wrote is kept.
	WithinEvent(ctx context.Context, eventID int64, fn func(ctx context.Context, tx EventRequestTx) error) error
}

// EventRequestTx is the view of the request store inside WithinEvent.
// Every call is scoped to the event the unit was opened for.
type EventRequestTx interface {
	// FindActive returns the requester's non-canceled request, or ErrRequestNotFound.
	FindActive(ctx context.Context, requesterID int64) (ParticipationRequest, error)
	CountConfirmed(ctx context.Context) (int, error)
	// GetByID returns ErrRequestNotFound when the request is missing or
	// belongs to another event.
	GetByID(ctx context.Context, id int64) (ParticipationRequest, error)
	// ListPending returns the PENDING requests among ids, in no particular order.
	ListPending(ctx context.Context, ids []int64) ([]ParticipationRequest, error)
	Create(ctx context.Context, req ParticipationRequest) (ParticipationRequest, error)
	SetStatus(ctx context.Context, ids []int64, status RequestStatus) error
}

// AdmissionService decides which participation requests become confirmed seats.
type AdmissionService interface {
	SubmitRequest(ctx context.Context, requesterID, eventID int64) (ParticipationRequest, error)
	CancelRequest(ctx context.Context, requesterID, requestID int64) (ParticipationRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]ParticipationRequest, error)
	ListRequestsByEvent(ctx context.Context, ownerID, eventID int64) ([]ParticipationRequest, error)
	UpdateRequestsStatus(ctx context.Context, ownerID, eventID int64, requestIDs []int64, target RequestStatus) (DecisionResult, error)
	ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error)
}
