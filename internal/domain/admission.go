package domain

import "fmt"

// Transition applies the request state machine. Moving a CANCELED request
// to CANCELED again is allowed and changes nothing; no status ever goes
// back to PENDING, and only PENDING requests can be confirmed or rejected.
func Transition(from, to RequestStatus) (RequestStatus, error) {
	switch to {
	case StatusCanceled:
		switch from {
		case StatusPending, StatusConfirmed, StatusRejected, StatusCanceled:
			return StatusCanceled, nil
		}
	case StatusConfirmed, StatusRejected:
		if from == StatusPending {
			return to, nil
		}
	}
	return from, Conflict(fmt.Sprintf("cannot move request from %s to %s", from, to))
}

// CheckOpenFor validates that requesterID may ask to join event at all.
// It does not look at existing requests or seats.
func CheckOpenFor(event Event, requesterID int64) error {
	if event.State != EventStatePublished {
		return ErrEventNotPublished
	}
	if event.InitiatorID == requesterID {
		return ErrSelfRequest
	}
	return nil
}

// Admit picks the initial status of a new request given whether the
// requester already holds an active one and how many seats are confirmed.
func Admit(event Event, hasActive bool, confirmed int) (RequestStatus, error) {
	if hasActive {
		return "", ErrDuplicateRequest
	}
	if event.Bounded() && confirmed >= event.ParticipantLimit {
		return "", ErrLimitReached
	}
	if event.AutoAdmits() {
		return StatusConfirmed, nil
	}
	return StatusPending, nil
}

// PlanDecision computes an organizer batch decision without touching storage.
// order is the caller's list of request ids and sets the priority when seats
// run out; pending holds the PENDING requests of the event found for those ids.
func PlanDecision(event Event, confirmed int, order []int64, pending []ParticipationRequest, target RequestStatus) (DecisionResult, error) {
	if target != StatusConfirmed && target != StatusRejected {
		return DecisionResult{}, Invalid("status must be %s or %s", StatusConfirmed, StatusRejected)
	}

	byID := make(map[int64]ParticipationRequest, len(pending))
	for _, r := range pending {
		byID[r.ID] = r
	}
	ordered := make([]ParticipationRequest, 0, len(order))
	for _, id := range order {
		r, ok := byID[id]
		if !ok || r.Status != StatusPending || r.EventID != event.ID {
			return DecisionResult{}, ErrNotAllPending
		}
		ordered = append(ordered, r)
	}

	result := DecisionResult{
		Confirmed: []ParticipationRequest{},
		Rejected:  []ParticipationRequest{},
	}

	if event.AutoAdmits() {
		// No moderation step: everything is seated, but a limit set on an
		// unmoderated event is still never exceeded.
		if event.Bounded() && confirmed+len(ordered) > event.ParticipantLimit {
			return DecisionResult{}, ErrLimitReached
		}
		for _, r := range ordered {
			result.Confirmed = append(result.Confirmed, r.WithStatus(StatusConfirmed))
		}
		return result, nil
	}

	available := event.ParticipantLimit - confirmed
	if available <= 0 {
		return DecisionResult{}, ErrLimitReached
	}

	for _, r := range ordered {
		if target == StatusConfirmed && available > 0 {
			result.Confirmed = append(result.Confirmed, r.WithStatus(StatusConfirmed))
			available--
			continue
		}
		result.Rejected = append(result.Rejected, r.WithStatus(StatusRejected))
	}
	return result, nil
}
