package directory

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventparticipation/internal/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /internal/events/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"title":"Go meetup","initiator":{"id":1,"name":"Org"},"participantLimit":10,"requestModeration":false,"state":"PUBLISHED","confirmedRequests":3}`))
	})
	mux.HandleFunc("GET /internal/events/8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":8,"initiator":{"id":2},"participantLimit":0,"state":"PENDING"}`))
	})
	mux.HandleFunc("GET /internal/events/500", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /internal/users/3/exists", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`true`))
	})
	mux.HandleFunc("GET /internal/users/4/exists", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`false`))
	})
	mux.HandleFunc("GET /internal/users/500/exists", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("GET /internal/users/3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"name":"Ada","email":"ada@example.com"}`))
	})
	mux.HandleFunc("GET /internal/users/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, fallbacks Fallbacks) *Client {
	return NewClient(Config{
		EventServiceURL: srv.URL + "/",
		UserServiceURL:  srv.URL,
		Timeout:         time.Second,
		Fallbacks:       fallbacks,
	}, nil, slog.New(slog.DiscardHandler))
}

func TestClient_GetEvent(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(srv, Fallbacks{})
	ctx := context.Background()

	e, err := c.GetEvent(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, &domain.Event{ID: 7, InitiatorID: 1, ParticipantLimit: 10, RequestModeration: false, State: domain.EventStatePublished}, e)

	// requestModeration defaults to true when the service omits it.
	e, err = c.GetEvent(ctx, 8)
	require.NoError(t, err)
	assert.True(t, e.RequestModeration)
	assert.Equal(t, domain.EventStatePending, e.State)

	_, err = c.GetEvent(ctx, 404)
	require.ErrorIs(t, err, domain.ErrEventNotFound)

	_, err = c.GetEvent(ctx, 500)
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestClient_Users(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(srv, Fallbacks{})
	ctx := context.Background()

	ok, err := c.ExistsUser(ctx, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.ExistsUser(ctx, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.ExistsUser(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.ExistsUser(ctx, 500)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.False(t, ok)

	u, err := c.GetUser(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 3, Name: "Ada", Email: "ada@example.com"}, u)

	_, err = c.GetUser(ctx, 404)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	u, err = c.GetUser(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 500}, u)
}

func TestClient_CustomFallbacks(t *testing.T) {
	srv := newTestServer(t)
	var causes []error
	c := newTestClient(srv, Fallbacks{
		ExistsUser: func(_ context.Context, _ int64, cause error) (bool, error) {
			causes = append(causes, cause)
			return false, nil
		},
		GetEvent: func(_ context.Context, eventID int64, cause error) (*domain.Event, error) {
			causes = append(causes, cause)
			return nil, domain.ErrEventNotFound
		},
	})
	ctx := context.Background()

	ok, err := c.ExistsUser(ctx, 500)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.GetEvent(ctx, 500)
	require.ErrorIs(t, err, domain.ErrEventNotFound)

	require.Len(t, causes, 2)
	for _, cause := range causes {
		assert.Error(t, cause)
	}
}

func TestClient_UnreachableServiceUsesFallback(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	c := NewClient(Config{EventServiceURL: url, UserServiceURL: url, Timeout: time.Second}, nil, slog.New(slog.DiscardHandler))
	_, err := c.GetEvent(context.Background(), 7)
	require.ErrorIs(t, err, domain.ErrUnavailable)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.NotNil(t, de.Cause)
}
