// Package directory reads events and users from the services that own them.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventparticipation/internal/domain"
)

// Fallbacks decide what a lookup returns when the owning service cannot
// be reached. cause is the transport or status error that triggered it.
type Fallbacks struct {
	GetEvent   func(ctx context.Context, eventID int64, cause error) (*domain.Event, error)
	ExistsUser func(ctx context.Context, userID int64, cause error) (bool, error)
	GetUser    func(ctx context.Context, userID int64, cause error) (*domain.User, error)
}

// DefaultFallbacks fail closed: lookups that gate an admission decision
// report the collaborator as unavailable. GetUser, which only feeds
// notifications, degrades to an empty user.
func DefaultFallbacks() Fallbacks {
	return Fallbacks{
		GetEvent: func(_ context.Context, _ int64, cause error) (*domain.Event, error) {
			return nil, domain.Unavailable("event service unavailable", cause)
		},
		ExistsUser: func(_ context.Context, _ int64, cause error) (bool, error) {
			return false, domain.Unavailable("user service unavailable", cause)
		},
		GetUser: func(_ context.Context, userID int64, _ error) (*domain.User, error) {
			return &domain.User{ID: userID}, nil
		},
	}
}

// Config holds the base URLs of the event and user services.
type Config struct {
	EventServiceURL string
	UserServiceURL  string
	Timeout         time.Duration
	Fallbacks       Fallbacks
}

// Client calls the internal endpoints of the event and user services.
type Client struct {
	client    *http.Client
	eventURL  string
	userURL   string
	fallbacks Fallbacks
	logger    *slog.Logger
}

// NewClient returns a directory client. A nil httpClient uses a client with
// cfg.Timeout; missing fallbacks are taken from DefaultFallbacks.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultFallbacks()
	if cfg.Fallbacks.GetEvent == nil {
		cfg.Fallbacks.GetEvent = defaults.GetEvent
	}
	if cfg.Fallbacks.ExistsUser == nil {
		cfg.Fallbacks.ExistsUser = defaults.ExistsUser
	}
	if cfg.Fallbacks.GetUser == nil {
		cfg.Fallbacks.GetUser = defaults.GetUser
	}
	return &Client{
		client:    httpClient,
		eventURL:  strings.TrimRight(cfg.EventServiceURL, "/"),
		userURL:   strings.TrimRight(cfg.UserServiceURL, "/"),
		fallbacks: cfg.Fallbacks,
		logger:    logger.With("component", "directory"),
	}
}

var errNotFound = errors.New("not found")

// eventDTO is the subset of the event service's full event the client reads.
type eventDTO struct {
	ID        int64 `json:"id"`
	Initiator struct {
		ID int64 `json:"id"`
	} `json:"initiator"`
	ParticipantLimit  int    `json:"participantLimit"`
	RequestModeration *bool  `json:"requestModeration"`
	State             string `json:"state"`
}

func (c *Client) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	var dto eventDTO
	err := c.getJSON(ctx, fmt.Sprintf("%s/internal/events/%d", c.eventURL, eventID), &dto)
	if errors.Is(err, errNotFound) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		c.logger.WarnContext(ctx, "event lookup failed, using fallback", "event_id", eventID, "err", err)
		return c.fallbacks.GetEvent(ctx, eventID, err)
	}
	moderation := true
	if dto.RequestModeration != nil {
		moderation = *dto.RequestModeration
	}
	return &domain.Event{
		ID:                dto.ID,
		InitiatorID:       dto.Initiator.ID,
		ParticipantLimit:  dto.ParticipantLimit,
		RequestModeration: moderation,
		State:             domain.EventState(dto.State),
	}, nil
}

func (c *Client) ExistsUser(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := c.getJSON(ctx, fmt.Sprintf("%s/internal/users/%d/exists", c.userURL, userID), &exists)
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	if err != nil {
		c.logger.WarnContext(ctx, "user lookup failed, using fallback", "user_id", userID, "err", err)
		return c.fallbacks.ExistsUser(ctx, userID, err)
	}
	return exists, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var u domain.User
	err := c.getJSON(ctx, fmt.Sprintf("%s/internal/users/%d", c.userURL, userID), &u)
	if errors.Is(err, errNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		c.logger.WarnContext(ctx, "user lookup failed, using fallback", "user_id", userID, "err", err)
		return c.fallbacks.GetUser(ctx, userID, err)
	}
	return &u, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status: %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
