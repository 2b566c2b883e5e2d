// Package memory provides an in-process request store. Writes made inside
// WithinEvent are staged and only become visible when the unit succeeds.
package memory

import (
	"context"
	"sort"
	"sync"

	"eventparticipation/internal/domain"
)

type participationRequestRepository struct {
	mu       sync.RWMutex
	requests map[int64]domain.ParticipationRequest
	nextID   int64

	locks *eventLocks
}

// NewParticipationRequestRepository returns an empty in-memory store.
func NewParticipationRequestRepository() domain.ParticipationRequestRepository {
	return &participationRequestRepository{
		requests: make(map[int64]domain.ParticipationRequest),
		locks:    newEventLocks(),
	}
}

func (r *participationRequestRepository) GetByID(ctx context.Context, id int64) (domain.ParticipationRequest, error) {
	if err := ctx.Err(); err != nil {
		return domain.ParticipationRequest{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return domain.ParticipationRequest{}, domain.ErrRequestNotFound
	}
	return req, nil
}

func (r *participationRequestRepository) ListByRequesterID(ctx context.Context, requesterID int64) ([]domain.ParticipationRequest, error) {
	return r.list(ctx, func(req domain.ParticipationRequest) bool { return req.RequesterID == requesterID })
}

func (r *participationRequestRepository) ListByEventID(ctx context.Context, eventID int64) ([]domain.ParticipationRequest, error) {
	return r.list(ctx, func(req domain.ParticipationRequest) bool { return req.EventID == eventID })
}

func (r *participationRequestRepository) list(ctx context.Context, keep func(domain.ParticipationRequest) bool) ([]domain.ParticipationRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]domain.ParticipationRequest, 0)
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	r.mu.RUnlock()
	sortByCreation(out)
	return out, nil
}

func (r *participationRequestRepository) CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := make(map[int64]int, len(eventIDs))
	for _, id := range eventIDs {
		counts[id] = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if _, ok := counts[req.EventID]; ok && req.Status == domain.StatusConfirmed {
			counts[req.EventID]++
		}
	}
	return counts, nil
}

func (r *participationRequestRepository) WithinEvent(ctx context.Context, eventID int64, fn func(ctx context.Context, tx domain.EventRequestTx) error) error {
	unlock, err := r.locks.acquire(ctx, eventID)
	if err != nil {
		return domain.Unavailable("timed out waiting for event lock", err)
	}
	defer unlock()

	tx := &eventTx{repo: r, eventID: eventID, staged: make(map[int64]domain.ParticipationRequest)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("unit of work aborted", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, req := range tx.staged {
		r.requests[id] = req
	}
	return nil
}

// eventTx reads committed state through its own staged writes.
type eventTx struct {
	repo    *participationRequestRepository
	eventID int64
	staged  map[int64]domain.ParticipationRequest
}

// snapshot returns every request of the event as seen by this unit.
func (t *eventTx) snapshot() map[int64]domain.ParticipationRequest {
	out := make(map[int64]domain.ParticipationRequest)
	t.repo.mu.RLock()
	for id, req := range t.repo.requests {
		if req.EventID == t.eventID {
			out[id] = req
		}
	}
	t.repo.mu.RUnlock()
	for id, req := range t.staged {
		out[id] = req
	}
	return out
}

func (t *eventTx) FindActive(ctx context.Context, requesterID int64) (domain.ParticipationRequest, error) {
	for _, req := range t.snapshot() {
		if req.RequesterID == requesterID && req.Active() {
			return req, nil
		}
	}
	return domain.ParticipationRequest{}, domain.ErrRequestNotFound
}

func (t *eventTx) CountConfirmed(ctx context.Context) (int, error) {
	n := 0
	for _, req := range t.snapshot() {
		if req.Status == domain.StatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (t *eventTx) GetByID(ctx context.Context, id int64) (domain.ParticipationRequest, error) {
	req, ok := t.snapshot()[id]
	if !ok {
		return domain.ParticipationRequest{}, domain.ErrRequestNotFound
	}
	return req, nil
}

func (t *eventTx) ListPending(ctx context.Context, ids []int64) ([]domain.ParticipationRequest, error) {
	all := t.snapshot()
	out := make([]domain.ParticipationRequest, 0, len(ids))
	for _, id := range ids {
		if req, ok := all[id]; ok && req.Status == domain.StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (t *eventTx) Create(ctx context.Context, req domain.ParticipationRequest) (domain.ParticipationRequest, error) {
	if req.EventID != t.eventID {
		return domain.ParticipationRequest{}, domain.Invalid("request for event %d created in unit for event %d", req.EventID, t.eventID)
	}
	t.repo.mu.Lock()
	t.repo.nextID++
	req.ID = t.repo.nextID
	t.repo.mu.Unlock()
	t.staged[req.ID] = req
	return req, nil
}

func (t *eventTx) SetStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	all := t.snapshot()
	for _, id := range ids {
		req, ok := all[id]
		if !ok {
			return domain.ErrRequestNotFound
		}
		t.staged[id] = req.WithStatus(status)
	}
	return nil
}

func sortByCreation(reqs []domain.ParticipationRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
		}
		return reqs[i].ID < reqs[j].ID
	})
}
