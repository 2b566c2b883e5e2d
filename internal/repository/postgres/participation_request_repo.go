package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventparticipation/internal/domain"
)

const requestColumns = `id, event_id, requester_id, status, created_at`

type participationRequestRepository struct {
	DB          *sql.DB
	lockTimeout time.Duration
}

// NewParticipationRequestRepository returns a store that serializes
// per-event units of work with a transaction-scoped advisory lock on the
// event id. lockTimeout bounds the wait for that lock; zero waits forever.
func NewParticipationRequestRepository(db *sql.DB, lockTimeout time.Duration) domain.ParticipationRequestRepository {
	return &participationRequestRepository{
		DB:          db,
		lockTimeout: lockTimeout,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (domain.ParticipationRequest, error) {
	var req domain.ParticipationRequest
	var status string
	if err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.CreatedAt); err != nil {
		return domain.ParticipationRequest{}, err
	}
	req.Status = domain.RequestStatus(status)
	return req, nil
}

func scanRequests(rows *sql.Rows) ([]domain.ParticipationRequest, error) {
	defer rows.Close()
	reqs := make([]domain.ParticipationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *participationRequestRepository) GetByID(ctx context.Context, id int64) (domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ParticipationRequest{}, domain.ErrRequestNotFound
		}
		return domain.ParticipationRequest{}, mapError("get request", err)
	}
	return req, nil
}

func (r *participationRequestRepository) ListByRequesterID(ctx context.Context, requesterID int64) ([]domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE requester_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, mapError("list requests by requester", err)
	}
	return scanRequests(rows)
}

func (r *participationRequestRepository) ListByEventID(ctx context.Context, eventID int64) ([]domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, mapError("list requests by event", err)
	}
	return scanRequests(rows)
}

func (r *participationRequestRepository) CountConfirmedByEventIDs(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	for _, id := range eventIDs {
		counts[id] = 0
	}
	query := `
		SELECT event_id, COUNT(*)
		FROM participation_requests
		WHERE event_id = ANY($1) AND status = $2
		GROUP BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs), string(domain.StatusConfirmed))
	if err != nil {
		return nil, mapError("count confirmed requests", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eventID int64
		var n int
		if err := rows.Scan(&eventID, &n); err != nil {
			return nil, err
		}
		counts[eventID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *participationRequestRepository) WithinEvent(ctx context.Context, eventID int64, fn func(ctx context.Context, tx domain.EventRequestTx) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if r.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
			return mapError("set lock timeout", err)
		}
	}
	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, eventID); err != nil {
		return mapError("lock event", err)
	}

	if err = fn(ctx, &eventTx{tx: tx, eventID: eventID}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// eventTx runs every statement on the locked transaction of one event.
type eventTx struct {
	tx      *sql.Tx
	eventID int64
}

func (t *eventTx) FindActive(ctx context.Context, requesterID int64) (domain.ParticipationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1 AND requester_id = $2 AND status <> $3
		LIMIT 1
	`
	req, err := scanRequest(t.tx.QueryRowContext(ctx, query, t.eventID, requesterID, string(domain.StatusCanceled)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ParticipationRequest{}, domain.ErrRequestNotFound
		}
		return domain.ParticipationRequest{}, mapError("find active request", err)
	}
	return req, nil
}

func (t *eventTx) CountConfirmed(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2`
	var n int
	if err := t.tx.QueryRowContext(ctx, query, t.eventID, string(domain.StatusConfirmed)).Scan(&n); err != nil {
		return 0, mapError("count confirmed requests", err)
	}
	return n, nil
}

func (t *eventTx) GetByID(ctx context.Context, id int64) (domain.ParticipationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM participation_requests WHERE id = $1 AND event_id = $2`
	req, err := scanRequest(t.tx.QueryRowContext(ctx, query, id, t.eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ParticipationRequest{}, domain.ErrRequestNotFound
		}
		return domain.ParticipationRequest{}, mapError("get request", err)
	}
	return req, nil
}

func (t *eventTx) ListPending(ctx context.Context, ids []int64) ([]domain.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []domain.ParticipationRequest{}, nil
	}
	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1 AND status = $2 AND id = ANY($3)
	`
	rows, err := t.tx.QueryContext(ctx, query, t.eventID, string(domain.StatusPending), pq.Array(ids))
	if err != nil {
		return nil, mapError("list pending requests", err)
	}
	return scanRequests(rows)
}

func (t *eventTx) Create(ctx context.Context, req domain.ParticipationRequest) (domain.ParticipationRequest, error) {
	if req.EventID != t.eventID {
		return domain.ParticipationRequest{}, domain.Invalid("request for event %d created in unit for event %d", req.EventID, t.eventID)
	}
	query := `
		INSERT INTO participation_requests (event_id, requester_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := t.tx.QueryRowContext(ctx, query, req.EventID, req.RequesterID, string(req.Status), req.CreatedAt).Scan(&req.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ParticipationRequest{}, domain.ErrDuplicateRequest
		}
		return domain.ParticipationRequest{}, mapError("insert request", err)
	}
	return req, nil
}

func (t *eventTx) SetStatus(ctx context.Context, ids []int64, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE participation_requests SET status = $1 WHERE event_id = $2 AND id = ANY($3)`
	result, err := t.tx.ExecContext(ctx, query, string(status), t.eventID, pq.Array(ids))
	if err != nil {
		return mapError("update request status", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return mapError("update request status", err)
	}
	if n != int64(len(ids)) {
		return domain.ErrRequestNotFound
	}
	return nil
}
