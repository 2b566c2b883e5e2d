package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventparticipation/internal/domain"
)

func TestEventDirectory_GetEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		errIs   error
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, initiator_id, participant_limit, request_moderation, state\s+FROM events\s+WHERE id = \$1`).
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "initiator_id", "participant_limit", "request_moderation", "state"}).
						AddRow(int64(7), int64(1), 10, true, "PUBLISHED"))
			},
			want: &domain.Event{ID: 7, InitiatorID: 1, ParticipantLimit: 10, RequestModeration: true, State: domain.EventStatePublished},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events`).
					WithArgs(int64(7)).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrEventNotFound,
		},
		{
			name: "timeout is retryable",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM events`).
					WithArgs(int64(7)).
					WillReturnError(context.DeadlineExceeded)
			},
			wantErr: true,
			errIs:   domain.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewEventDirectory(db).GetEvent(ctx, 7)
			if tt.wantErr {
				require.ErrorIs(t, err, tt.errIs)
				require.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id = \$1\)`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT id, name, email FROM users WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(int64(3), "Ada", "ada@example.com"))
	mock.ExpectQuery(`SELECT id, name, email FROM users WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnError(sql.ErrNoRows)

	dir := NewUserDirectory(db)

	exists, err := dir.ExistsUser(ctx, 3)
	require.NoError(t, err)
	require.True(t, exists)

	u, err := dir.GetUser(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, &domain.User{ID: 3, Name: "Ada", Email: "ada@example.com"}, u)

	_, err = dir.GetUser(ctx, 4)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
