package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventparticipation/internal/domain"
)

type admissionService struct {
	requests       domain.ParticipationRequestRepository
	events         domain.EventDirectory
	users          domain.UserDirectory
	notifier       domain.DecisionNotifier
	contextTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewAdmissionService returns the AdmissionService. Every mutating call runs
// its checks and writes inside one per-event unit of the request store.
func NewAdmissionService(
	requests domain.ParticipationRequestRepository,
	events domain.EventDirectory,
	users domain.UserDirectory,
	notifier domain.DecisionNotifier,
	timeout time.Duration,
	logger *slog.Logger,
) domain.AdmissionService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &admissionService{
		requests:       requests,
		events:         events,
		users:          users,
		notifier:       notifier,
		contextTimeout: timeout,
		logger:         logger.With("component", "admission"),
		now:            time.Now,
	}
}

func (s *admissionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

func (s *admissionService) SubmitRequest(ctx context.Context, requesterID, eventID int64) (domain.ParticipationRequest, error) {
	if err := requirePositive("user id", requesterID); err != nil {
		return domain.ParticipationRequest{}, err
	}
	if err := requirePositive("event id", eventID); err != nil {
		return domain.ParticipationRequest{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.requireUser(ctx, requesterID); err != nil {
		return domain.ParticipationRequest{}, err
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return domain.ParticipationRequest{}, err
	}
	if err := domain.CheckOpenFor(*event, requesterID); err != nil {
		return domain.ParticipationRequest{}, err
	}

	var created domain.ParticipationRequest
	err = s.requests.WithinEvent(ctx, eventID, func(ctx context.Context, tx domain.EventRequestTx) error {
		_, err := tx.FindActive(ctx, requesterID)
		hasActive := err == nil
		if err != nil && !isRequestNotFound(err) {
			return fmt.Errorf("failed to check existing request: %w", err)
		}
		confirmed, err := tx.CountConfirmed(ctx)
		if err != nil {
			return fmt.Errorf("failed to count confirmed requests: %w", err)
		}
		status, err := domain.Admit(*event, hasActive, confirmed)
		if err != nil {
			return err
		}
		created, err = tx.Create(ctx, domain.NewParticipationRequest(eventID, requesterID, status, s.now().UTC()))
		return err
	})
	if err != nil {
		return domain.ParticipationRequest{}, err
	}
	s.logger.InfoContext(ctx, "participation request submitted",
		"request_id", created.ID,
		"event_id", eventID,
		"requester_id", requesterID,
		"status", created.Status,
	)
	return created, nil
}

func (s *admissionService) CancelRequest(ctx context.Context, requesterID, requestID int64) (domain.ParticipationRequest, error) {
	if err := requirePositive("user id", requesterID); err != nil {
		return domain.ParticipationRequest{}, err
	}
	if err := requirePositive("request id", requestID); err != nil {
		return domain.ParticipationRequest{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.requireUser(ctx, requesterID); err != nil {
		return domain.ParticipationRequest{}, err
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return domain.ParticipationRequest{}, err
	}
	// Someone else's request is reported as missing.
	if req.RequesterID != requesterID {
		return domain.ParticipationRequest{}, domain.ErrRequestNotFound
	}

	var canceled domain.ParticipationRequest
	err = s.requests.WithinEvent(ctx, req.EventID, func(ctx context.Context, tx domain.EventRequestTx) error {
		current, err := tx.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		next, err := domain.Transition(current.Status, domain.StatusCanceled)
		if err != nil {
			return err
		}
		canceled = current.WithStatus(next)
		if current.Status == next {
			return nil
		}
		return tx.SetStatus(ctx, []int64{requestID}, next)
	})
	if err != nil {
		return domain.ParticipationRequest{}, err
	}
	s.logger.InfoContext(ctx, "participation request canceled",
		"request_id", requestID,
		"event_id", canceled.EventID,
		"requester_id", requesterID,
	)
	return canceled, nil
}

func (s *admissionService) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]domain.ParticipationRequest, error) {
	if err := requirePositive("user id", requesterID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.requests.ListByRequesterID(ctx, requesterID)
}

func (s *admissionService) ListRequestsByEvent(ctx context.Context, ownerID, eventID int64) ([]domain.ParticipationRequest, error) {
	if err := requirePositive("user id", ownerID); err != nil {
		return nil, err
	}
	if err := requirePositive("event id", eventID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.ownedEvent(ctx, ownerID, eventID); err != nil {
		return nil, err
	}
	return s.requests.ListByEventID(ctx, eventID)
}

func (s *admissionService) UpdateRequestsStatus(ctx context.Context, ownerID, eventID int64, requestIDs []int64, target domain.RequestStatus) (domain.DecisionResult, error) {
	if err := requirePositive("user id", ownerID); err != nil {
		return domain.DecisionResult{}, err
	}
	if err := requirePositive("event id", eventID); err != nil {
		return domain.DecisionResult{}, err
	}
	if err := validateRequestIDs(requestIDs); err != nil {
		return domain.DecisionResult{}, err
	}
	if target != domain.StatusConfirmed && target != domain.StatusRejected {
		return domain.DecisionResult{}, domain.Invalid("status must be %s or %s", domain.StatusConfirmed, domain.StatusRejected)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.ownedEvent(ctx, ownerID, eventID)
	if err != nil {
		return domain.DecisionResult{}, err
	}

	var result domain.DecisionResult
	err = s.requests.WithinEvent(ctx, eventID, func(ctx context.Context, tx domain.EventRequestTx) error {
		pending, err := tx.ListPending(ctx, requestIDs)
		if err != nil {
			return fmt.Errorf("failed to load pending requests: %w", err)
		}
		confirmed, err := tx.CountConfirmed(ctx)
		if err != nil {
			return fmt.Errorf("failed to count confirmed requests: %w", err)
		}
		plan, err := domain.PlanDecision(*event, confirmed, requestIDs, pending, target)
		if err != nil {
			return err
		}
		if err := tx.SetStatus(ctx, requestIDOf(plan.Confirmed), domain.StatusConfirmed); err != nil {
			return err
		}
		if err := tx.SetStatus(ctx, requestIDOf(plan.Rejected), domain.StatusRejected); err != nil {
			return err
		}
		result = plan
		return nil
	})
	if err != nil {
		return domain.DecisionResult{}, err
	}
	s.logger.InfoContext(ctx, "participation requests decided",
		"event_id", eventID,
		"confirmed", len(result.Confirmed),
		"rejected", len(result.Rejected),
	)
	s.notifier.NotifyDecision(ctx, result)
	return result, nil
}

func (s *admissionService) ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	if len(eventIDs) == 0 {
		return map[int64]int{}, nil
	}
	unique := make([]int64, 0, len(eventIDs))
	seen := make(map[int64]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		if err := requirePositive("event id", id); err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.requests.CountConfirmedByEventIDs(ctx, unique)
}

func (s *admissionService) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.ExistsUser(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return nil
}

// ownedEvent returns the event when ownerID initiated it. Events owned by
// someone else are reported as missing.
func (s *admissionService) ownedEvent(ctx context.Context, ownerID, eventID int64) (*domain.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != ownerID {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func requirePositive(field string, id int64) error {
	if id <= 0 {
		return domain.Invalid("%s must be positive, got %d", field, id)
	}
	return nil
}

func validateRequestIDs(ids []int64) error {
	if len(ids) == 0 {
		return domain.Invalid("requestIds must not be empty")
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if err := requirePositive("request id", id); err != nil {
			return err
		}
		if _, ok := seen[id]; ok {
			return domain.Invalid("request id %d listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func isRequestNotFound(err error) bool {
	return errors.Is(err, domain.ErrRequestNotFound)
}

func requestIDOf(reqs []domain.ParticipationRequest) []int64 {
	ids := make([]int64, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID
	}
	return ids
}
