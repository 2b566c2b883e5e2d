package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventparticipation/internal/domain"
)

// eventDirectory reads events from a shared database. It never writes.
type eventDirectory struct {
	DB *sql.DB
}

func NewEventDirectory(db *sql.DB) domain.EventDirectory {
	return &eventDirectory{DB: db}
}

func (d *eventDirectory) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	query := `
		SELECT id, initiator_id, participant_limit, request_moderation, state
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var state string
	err := d.DB.QueryRowContext(ctx, query, eventID).
		Scan(&e.ID, &e.InitiatorID, &e.ParticipantLimit, &e.RequestModeration, &state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, mapError("get event", err)
	}
	e.State = domain.EventState(state)
	return e, nil
}

type userDirectory struct {
	DB *sql.DB
}

func NewUserDirectory(db *sql.DB) domain.UserDirectory {
	return &userDirectory{DB: db}
}

func (d *userDirectory) ExistsUser(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := d.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, mapError("check user", err)
	}
	return exists, nil
}

func (d *userDirectory) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	u := &domain.User{}
	err := d.DB.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, mapError("get user", err)
	}
	return u, nil
}
