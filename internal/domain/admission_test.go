package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    RequestStatus
		to      RequestStatus
		want    RequestStatus
		wantErr bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, StatusConfirmed, false},
		{"pending to rejected", StatusPending, StatusRejected, StatusRejected, false},
		{"pending to canceled", StatusPending, StatusCanceled, StatusCanceled, false},
		{"confirmed to canceled", StatusConfirmed, StatusCanceled, StatusCanceled, false},
		{"rejected to canceled", StatusRejected, StatusCanceled, StatusCanceled, false},
		{"canceled to canceled is a no-op", StatusCanceled, StatusCanceled, StatusCanceled, false},
		{"confirmed cannot be rejected", StatusConfirmed, StatusRejected, StatusConfirmed, true},
		{"confirmed cannot be confirmed again", StatusConfirmed, StatusConfirmed, StatusConfirmed, true},
		{"rejected cannot be confirmed", StatusRejected, StatusConfirmed, StatusRejected, true},
		{"canceled cannot be confirmed", StatusCanceled, StatusConfirmed, StatusCanceled, true},
		{"nothing goes back to pending", StatusConfirmed, StatusPending, StatusConfirmed, true},
		{"pending to pending", StatusPending, StatusPending, StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)
			require.Equal(t, tt.want, got)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConflict)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckOpenFor(t *testing.T) {
	published := Event{ID: 1, InitiatorID: 10, State: EventStatePublished}

	require.NoError(t, CheckOpenFor(published, 20))
	require.ErrorIs(t, CheckOpenFor(published, 10), ErrSelfRequest)

	draft := published
	draft.State = EventStatePending
	require.ErrorIs(t, CheckOpenFor(draft, 20), ErrEventNotPublished)
	// Publication is checked before ownership.
	require.ErrorIs(t, CheckOpenFor(draft, 10), ErrEventNotPublished)
}

func TestAdmit(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		hasActive bool
		confirmed int
		want      RequestStatus
		wantErr   error
	}{
		{
			name:  "unlimited unmoderated is confirmed",
			event: Event{ParticipantLimit: 0, RequestModeration: false},
			want:  StatusConfirmed,
		},
		{
			name:      "unlimited moderated is still confirmed",
			event:     Event{ParticipantLimit: 0, RequestModeration: true},
			confirmed: 500,
			want:      StatusConfirmed,
		},
		{
			name:      "limited moderated is pending",
			event:     Event{ParticipantLimit: 5, RequestModeration: true},
			confirmed: 4,
			want:      StatusPending,
		},
		{
			name:      "limited unmoderated is confirmed",
			event:     Event{ParticipantLimit: 5, RequestModeration: false},
			confirmed: 4,
			want:      StatusConfirmed,
		},
		{
			name:      "limit reached",
			event:     Event{ParticipantLimit: 5, RequestModeration: true},
			confirmed: 5,
			wantErr:   ErrLimitReached,
		},
		{
			name:      "duplicate wins over limit",
			event:     Event{ParticipantLimit: 1},
			hasActive: true,
			confirmed: 1,
			wantErr:   ErrDuplicateRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Admit(tt.event, tt.hasActive, tt.confirmed)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func pendingRequests(eventID int64, ids ...int64) []ParticipationRequest {
	out := make([]ParticipationRequest, 0, len(ids))
	for _, id := range ids {
		r := NewParticipationRequest(eventID, 100+id, StatusPending, time.Date(2025, 1, 1, 0, 0, 0, int(id), time.UTC))
		r.ID = id
		out = append(out, r)
	}
	return out
}

func ids(reqs []ParticipationRequest) []int64 {
	out := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.ID)
	}
	return out
}

func TestPlanDecision_GreedyFillFollowsCallerOrder(t *testing.T) {
	event := Event{ID: 7, ParticipantLimit: 3, RequestModeration: true}
	pending := pendingRequests(7, 1, 2, 3)

	// Caller priority is C, A, B even though A was created first.
	got, err := PlanDecision(event, 1, []int64{3, 1, 2}, pending, StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 1}, ids(got.Confirmed))
	require.Equal(t, []int64{2}, ids(got.Rejected))
	for _, r := range got.Confirmed {
		require.Equal(t, StatusConfirmed, r.Status)
	}
	require.Equal(t, StatusRejected, got.Rejected[0].Status)

	// The input values are untouched.
	for _, r := range pending {
		require.Equal(t, StatusPending, r.Status)
	}
}

func TestPlanDecision(t *testing.T) {
	moderated := Event{ID: 7, ParticipantLimit: 3, RequestModeration: true}

	tests := []struct {
		name          string
		event         Event
		confirmed     int
		order         []int64
		pending       []ParticipationRequest
		target        RequestStatus
		wantConfirmed []int64
		wantRejected  []int64
		wantErr       error
	}{
		{
			name:          "two free seats for three requests",
			event:         moderated,
			confirmed:     1,
			order:         []int64{1, 2, 3},
			pending:       pendingRequests(7, 1, 2, 3),
			target:        StatusConfirmed,
			wantConfirmed: []int64{1, 2},
			wantRejected:  []int64{3},
		},
		{
			name:          "reject all",
			event:         moderated,
			confirmed:     1,
			order:         []int64{2, 1},
			pending:       pendingRequests(7, 1, 2),
			target:        StatusRejected,
			wantConfirmed: []int64{},
			wantRejected:  []int64{2, 1},
		},
		{
			name:      "no free seats fails even for rejection",
			event:     moderated,
			confirmed: 3,
			order:     []int64{1},
			pending:   pendingRequests(7, 1),
			target:    StatusRejected,
			wantErr:   ErrLimitReached,
		},
		{
			name:    "missing id fails the batch",
			event:   moderated,
			order:   []int64{1, 9},
			pending: pendingRequests(7, 1),
			target:  StatusConfirmed,
			wantErr: ErrNotAllPending,
		},
		{
			name:    "request of another event fails the batch",
			event:   moderated,
			order:   []int64{1},
			pending: pendingRequests(8, 1),
			target:  StatusConfirmed,
			wantErr: ErrNotAllPending,
		},
		{
			name:      "pending check happens before the seat check",
			event:     moderated,
			confirmed: 3,
			order:     []int64{1, 9},
			pending:   pendingRequests(7, 1),
			target:    StatusConfirmed,
			wantErr:   ErrNotAllPending,
		},
		{
			name:          "unlimited event confirms everything",
			event:         Event{ID: 7, ParticipantLimit: 0, RequestModeration: true},
			confirmed:     40,
			order:         []int64{1, 2},
			pending:       pendingRequests(7, 1, 2),
			target:        StatusRejected,
			wantConfirmed: []int64{1, 2},
			wantRejected:  []int64{},
		},
		{
			name:      "unmoderated event never exceeds its limit",
			event:     Event{ID: 7, ParticipantLimit: 2, RequestModeration: false},
			confirmed: 1,
			order:     []int64{1, 2},
			pending:   pendingRequests(7, 1, 2),
			target:    StatusConfirmed,
			wantErr:   ErrLimitReached,
		},
		{
			name:    "pending is not a decision",
			event:   moderated,
			order:   []int64{1},
			pending: pendingRequests(7, 1),
			target:  StatusPending,
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanDecision(tt.event, tt.confirmed, tt.order, tt.pending, tt.target)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantConfirmed, ids(got.Confirmed))
			require.Equal(t, tt.wantRejected, ids(got.Rejected))
		})
	}
}

func TestErrorIs(t *testing.T) {
	require.ErrorIs(t, ErrLimitReached, ErrConflict)
	require.False(t, errors.Is(ErrLimitReached, ErrDuplicateRequest))
	require.False(t, errors.Is(ErrLimitReached, ErrNotFound))

	wrapped := Unavailable("store unavailable", errors.New("lock timeout"))
	require.ErrorIs(t, wrapped, ErrUnavailable)
	require.Equal(t, "store unavailable: lock timeout", wrapped.Error())
	require.Equal(t, KindUnavailable, KindOf(wrapped))
	require.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestParseRequestStatus(t *testing.T) {
	got, err := ParseRequestStatus(" confirmed ")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got)

	_, err = ParseRequestStatus("maybe")
	require.ErrorIs(t, err, ErrInvalidInput)
}
